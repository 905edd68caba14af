// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared CUE parsing utilities.
//
// The package consolidates the 3-step CUE parsing pattern used by the
// funcfile and config packages:
//
//  1. Compile the embedded schema
//  2. Compile user data and unify with schema
//  3. Validate and decode to Go struct
//
// # Usage
//
//	//go:embed funcfile_schema.cue
//	var schema string
//
//	result, err := cueutil.ParseAndDecode[Funcfile](
//	    []byte(schema),
//	    userFileBytes,
//	    "#Funcfile",
//	    cueutil.WithFilename("funcfile.cue"),
//	)
//	if err != nil {
//	    return nil, err // Error includes the CUE path for debugging
//	}
//	return result.Value, nil
package cueutil
