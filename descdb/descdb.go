// Copyright 2014 Google Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package descdb stores a resolved build description in a SQLite database so
// that other tools can query targets, invocations and their files without
// re-resolving the project.
package descdb

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/ohler55/ojg/oj"
	_ "modernc.org/sqlite"

	"github.com/xcbuild/xcbuild/pbxbuild"
	"github.com/xcbuild/xcbuild/pbxbuild/tool"
)

const schema = `
CREATE TABLE IF NOT EXISTS targets (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	level INTEGER NOT NULL,
	product_path TEXT
);

CREATE TABLE IF NOT EXISTS target_dependencies (
	target_id INTEGER NOT NULL,
	dependency TEXT NOT NULL,
	PRIMARY KEY (target_id, dependency)
) WITHOUT ROWID;

CREATE TABLE IF NOT EXISTS invocations (
	id INTEGER PRIMARY KEY,
	target_id INTEGER NOT NULL,
	position INTEGER NOT NULL,
	executable TEXT NOT NULL,
	arguments JSON NOT NULL,
	environment JSON NOT NULL,
	working_directory TEXT,
	log_message TEXT
);
CREATE INDEX IF NOT EXISTS idx_invocations_target ON invocations(target_id, position);

CREATE TABLE IF NOT EXISTS invocation_files (
	invocation_id INTEGER NOT NULL,
	role TEXT NOT NULL,
	path TEXT NOT NULL,
	PRIMARY KEY (invocation_id, role, path)
) WITHOUT ROWID;
CREATE INDEX IF NOT EXISTS idx_files_path ON invocation_files(path, role);

CREATE TABLE IF NOT EXISTS auxiliary_files (
	path TEXT PRIMARY KEY,
	invocation_id INTEGER NOT NULL,
	contents BLOB,
	executable INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS diagnostics (
	id INTEGER PRIMARY KEY,
	severity TEXT NOT NULL,
	target TEXT,
	file TEXT,
	setting TEXT,
	message TEXT NOT NULL
);
`

// File roles in invocation_files.
const (
	RoleInput      = "input"
	RoleOutput     = "output"
	RoleDependency = "dependency"
	RoleDepInfo    = "dependency-info"
)

// A Target is the row written for one resolved target.
type Target struct {
	Name         string
	Level        int
	ProductPath  string
	Dependencies []string
}

// Writer writes a build description inside a single transaction.  Commit
// makes the rows visible; Close commits anything pending.
type Writer struct {
	db *sql.DB
	tx *sql.Tx
	mu sync.Mutex

	stmtInvocation *sql.Stmt
	stmtFile       *sql.Stmt
	stmtAux        *sql.Stmt
}

// Open opens or creates the database at path and prepares its schema.
// Path may be ":memory:".
func Open(path string) (*Writer, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA synchronous = OFF"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Writer{db: db}, nil
}

// DB returns the underlying database for queries.
func (w *Writer) DB() *sql.DB {
	return w.db
}

func (w *Writer) begin() error {
	if w.tx != nil {
		return nil
	}
	tx, err := w.db.Begin()
	if err != nil {
		return err
	}
	w.tx = tx

	w.stmtInvocation, err = tx.Prepare(`
		INSERT INTO invocations (target_id, position, executable, arguments, environment, working_directory, log_message)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	w.stmtFile, err = tx.Prepare(`INSERT OR IGNORE INTO invocation_files (invocation_id, role, path) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	w.stmtAux, err = tx.Prepare(`INSERT OR REPLACE INTO auxiliary_files (path, invocation_id, contents, executable) VALUES (?, ?, ?, ?)`)
	return err
}

// AddTarget writes target and returns its row id.  Writing a target again
// replaces the earlier row.
func (w *Writer) AddTarget(t Target) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.begin(); err != nil {
		return 0, err
	}

	res, err := w.tx.Exec(`INSERT OR REPLACE INTO targets (name, level, product_path) VALUES (?, ?, ?)`,
		t.Name, t.Level, t.ProductPath)
	if err != nil {
		return 0, fmt.Errorf("target %s: %w", t.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	for _, dep := range t.Dependencies {
		if _, err := w.tx.Exec(`INSERT OR IGNORE INTO target_dependencies (target_id, dependency) VALUES (?, ?)`, id, dep); err != nil {
			return 0, fmt.Errorf("target %s: %w", t.Name, err)
		}
	}
	return id, nil
}

// AddInvocations writes invocations, in order, for the target with row id
// targetID.
func (w *Writer) AddInvocations(targetID int64, invocations []tool.Invocation) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.begin(); err != nil {
		return err
	}

	for i := range invocations {
		inv := &invocations[i]
		res, err := w.stmtInvocation.Exec(targetID, i, inv.Executable,
			argumentsJSON(inv.Arguments), environmentJSON(inv.Environment),
			inv.WorkingDirectory, inv.LogMessage)
		if err != nil {
			return fmt.Errorf("invocation %q: %w", inv.LogMessage, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}

		files := []struct {
			role  string
			paths []string
		}{
			{RoleInput, inv.Inputs},
			{RoleOutput, inv.Outputs},
			{RoleDependency, inv.InputDependencies},
		}
		for _, f := range files {
			for _, path := range f.paths {
				if _, err := w.stmtFile.Exec(id, f.role, path); err != nil {
					return err
				}
			}
		}
		for _, info := range inv.DependencyInfo {
			if _, err := w.stmtFile.Exec(id, RoleDepInfo, info.Path); err != nil {
				return err
			}
		}
		for _, aux := range inv.AuxiliaryFiles {
			if _, err := w.stmtAux.Exec(aux.Path, id, aux.Contents, aux.Executable); err != nil {
				return err
			}
		}
	}
	return nil
}

// AddDiagnostics writes diagnostics in order.
func (w *Writer) AddDiagnostics(diags []pbxbuild.Diagnostic) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.begin(); err != nil {
		return err
	}
	for _, d := range diags {
		_, err := w.tx.Exec(`INSERT INTO diagnostics (severity, target, file, setting, message) VALUES (?, ?, ?, ?, ?)`,
			d.Severity.String(), d.Target, d.File, d.Setting, d.Message)
		if err != nil {
			return err
		}
	}
	return nil
}

// Commit makes everything written so far visible.
func (w *Writer) Commit() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.commit()
}

func (w *Writer) commit() error {
	if w.tx == nil {
		return nil
	}
	for _, stmt := range []*sql.Stmt{w.stmtInvocation, w.stmtFile, w.stmtAux} {
		if stmt != nil {
			_ = stmt.Close()
		}
	}
	w.stmtInvocation, w.stmtFile, w.stmtAux = nil, nil, nil
	err := w.tx.Commit()
	w.tx = nil
	return err
}

// Close commits pending rows and closes the database.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	err := w.commit()
	if cerr := w.db.Close(); err == nil {
		err = cerr
	}
	return err
}

func argumentsJSON(args []string) string {
	list := make([]any, len(args))
	for i, a := range args {
		list[i] = a
	}
	return oj.JSON(list)
}

func environmentJSON(env map[string]string) string {
	obj := make(map[string]any, len(env))
	for k, v := range env {
		obj[k] = v
	}
	return oj.JSON(obj, &oj.Options{Sort: true})
}
