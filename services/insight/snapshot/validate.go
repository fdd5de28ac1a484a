// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package snapshot

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Preflight validates a snapshot before any analysis runs.
//
// Description:
//
//	This is the engine's single fatal path: a malformed input record is
//	a producer bug and the run refuses to start. Everything downstream of
//	preflight degrades gracefully instead of failing.
//
//	Edges referencing undeclared files are deliberately NOT rejected
//	here; unresolved targets become phantom-import measurements during
//	graph construction.
//
// Outputs:
//
//   - error: nil when the snapshot is acceptable. Wraps ErrNilSnapshot,
//     ErrNoFiles, ErrDuplicatePath, or ErrInvalidRecord otherwise.
func Preflight(snap *Snapshot) error {
	if snap == nil {
		return ErrNilSnapshot
	}
	if len(snap.Files) == 0 {
		return ErrNoFiles
	}

	seen := make(map[string]struct{}, len(snap.Files))
	for i := range snap.Files {
		f := &snap.Files[i]
		if _, dup := seen[f.Path]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicatePath, f.Path)
		}
		seen[f.Path] = struct{}{}

		if err := validate.Struct(f); err != nil {
			return fmt.Errorf("%w: %q: %w", ErrInvalidRecord, f.Path, err)
		}
	}

	if err := validate.Struct(snap); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	return nil
}
