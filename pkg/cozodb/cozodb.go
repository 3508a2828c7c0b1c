// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cozodb is a thin cgo binding onto CozoDB's C API, giving the ISG's
// persistent store (pkg/store) a handle to run CozoScript against an
// embedded "mem", "sqlite", or "rocksdb" engine.
package cozodb

/*
#include <stdlib.h>
#include <string.h>
#include "cozo_c.h"

// Use ${SRCDIR} so a plain "go build ./..." finds the vendored static
// library under ./lib regardless of the caller's working directory.
#cgo LDFLAGS: -L${SRCDIR}/../../lib -lcozo_c -lstdc++ -lm
#cgo windows LDFLAGS: -lbcrypt -lwsock32 -lws2_32 -lshlwapi -lrpcrt4
#cgo darwin LDFLAGS: -framework Security
*/
import "C"

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"unsafe"
)

// DB is a handle to one open CozoDB instance.
type DB struct {
	id     C.int32_t
	closed bool
}

// Rows is the column-headers-plus-data-rows shape every CozoScript query
// returns.
type Rows struct {
	Headers []string
	Rows    [][]any
}

// New opens engine ("mem", "sqlite", or "rocksdb") at path, which is
// ignored for "mem". options is passed through as engine-specific JSON and
// may be nil.
func New(engine, path string, options map[string]any) (DB, error) {
	cEngine := C.CString(engine)
	defer C.free(unsafe.Pointer(cEngine))

	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))

	optionsJSON := "{}"
	if len(options) > 0 {
		optBytes, err := json.Marshal(options)
		if err != nil {
			return DB{}, fmt.Errorf("marshal options: %w", err)
		}
		optionsJSON = string(optBytes)
	}
	slog.Debug("cozodb.open", "engine", engine, "path", path)
	cOptions := C.CString(optionsJSON)
	defer C.free(unsafe.Pointer(cOptions))

	var dbID C.int32_t
	if errPtr := C.cozo_open_db(cEngine, cPath, cOptions, &dbID); errPtr != nil {
		errMsg := C.GoString(errPtr)
		C.cozo_free_str(errPtr)
		return DB{}, errors.New(errMsg)
	}
	return DB{id: dbID}, nil
}

// Run executes script against the database, allowing write operations.
func (db *DB) Run(script string, params map[string]any) (Rows, error) {
	return db.run(script, params, false)
}

// RunReadOnly executes script with CozoDB's immutable_query flag set, so a
// write operation in script fails rather than silently mutating state.
func (db *DB) RunReadOnly(script string, params map[string]any) (Rows, error) {
	return db.run(script, params, true)
}

func (db *DB) run(script string, params map[string]any, immutable bool) (Rows, error) {
	if db.closed {
		return Rows{}, errors.New("cozodb: database is closed")
	}

	cScript := C.CString(script)
	defer C.free(unsafe.Pointer(cScript))

	paramsJSON := "{}"
	if len(params) > 0 {
		paramBytes, err := json.Marshal(params)
		if err != nil {
			return Rows{}, fmt.Errorf("marshal params: %w", err)
		}
		paramsJSON = string(paramBytes)
	}
	cParams := C.CString(paramsJSON)
	defer C.free(unsafe.Pointer(cParams))

	resultPtr := C.cozo_run_query(db.id, cScript, cParams, C.bool(immutable))
	if resultPtr == nil {
		return Rows{}, errors.New("cozodb: cozo_run_query returned null")
	}

	resultJSON := C.GoString(resultPtr)
	C.cozo_free_str(resultPtr)
	return parseRows(resultJSON)
}

// Close releases the database handle. Safe to call more than once.
func (db *DB) Close() bool {
	if db.closed {
		return false
	}
	db.closed = true
	return bool(C.cozo_close_db(db.id))
}

func parseRows(jsonStr string) (Rows, error) {
	var result struct {
		OK      bool     `json:"ok"`
		Headers []string `json:"headers"`
		Rows    [][]any  `json:"rows"`
		Message string   `json:"message"`
		Display string   `json:"display"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return Rows{}, fmt.Errorf("parse result: %w", err)
	}
	if !result.OK {
		switch {
		case result.Message != "":
			return Rows{}, errors.New(result.Message)
		case result.Display != "":
			return Rows{}, errors.New(result.Display)
		default:
			return Rows{}, errors.New("cozodb: query failed")
		}
	}
	return Rows{Headers: result.Headers, Rows: result.Rows}, nil
}

func runOKResult(resultPtr *C.char, label string) error {
	if resultPtr == nil {
		return fmt.Errorf("cozodb: %s returned null", label)
	}
	resultJSON := C.GoString(resultPtr)
	C.cozo_free_str(resultPtr)

	var result struct {
		OK      bool   `json:"ok"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return fmt.Errorf("parse %s result: %w", label, err)
	}
	if !result.OK {
		return errors.New(result.Message)
	}
	return nil
}

// Backup writes a snapshot of the database to outPath.
func (db *DB) Backup(outPath string) error {
	if db.closed {
		return errors.New("cozodb: database is closed")
	}
	cPath := C.CString(outPath)
	defer C.free(unsafe.Pointer(cPath))
	return runOKResult(C.cozo_backup(db.id, cPath), "backup")
}

// Restore replaces the database's contents with a prior Backup's output.
func (db *DB) Restore(inPath string) error {
	if db.closed {
		return errors.New("cozodb: database is closed")
	}
	cPath := C.CString(inPath)
	defer C.free(unsafe.Pointer(cPath))
	return runOKResult(C.cozo_restore(db.id, cPath), "restore")
}

// ImportRelations loads rows into existing relations from a JSON payload
// shaped like CozoDB's own export format.
func (db *DB) ImportRelations(jsonPayload string) error {
	if db.closed {
		return errors.New("cozodb: database is closed")
	}
	cPayload := C.CString(jsonPayload)
	defer C.free(unsafe.Pointer(cPayload))
	return runOKResult(C.cozo_import_relations(db.id, cPayload), "import")
}

// ExportRelations serializes the relations named in jsonPayload to CozoDB's
// JSON export format.
func (db *DB) ExportRelations(jsonPayload string) (string, error) {
	if db.closed {
		return "", errors.New("cozodb: database is closed")
	}
	cPayload := C.CString(jsonPayload)
	defer C.free(unsafe.Pointer(cPayload))

	resultPtr := C.cozo_export_relations(db.id, cPayload)
	if resultPtr == nil {
		return "", errors.New("cozodb: cozo_export_relations returned null")
	}
	resultJSON := C.GoString(resultPtr)
	C.cozo_free_str(resultPtr)
	return resultJSON, nil
}
