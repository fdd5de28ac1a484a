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
	"errors"
)

// Sentinel errors for snapshot preflight validation.
var (
	// ErrNilSnapshot indicates a nil snapshot was passed to the engine.
	ErrNilSnapshot = errors.New("snapshot is nil")

	// ErrNoFiles indicates the snapshot declares no files.
	ErrNoFiles = errors.New("snapshot contains no files")

	// ErrDuplicatePath indicates two file records share the same path.
	ErrDuplicatePath = errors.New("duplicate file path")

	// ErrInvalidRecord indicates a file record failed field validation.
	ErrInvalidRecord = errors.New("invalid file record")
)
