package extract

import (
	"strings"
	"testing"

	"codeatlas/internal/config"
	"codeatlas/internal/logging"
	"codeatlas/internal/model"
)

func newExtractor() *Extractor {
	cfg := config.DefaultConfig()
	return New(&cfg.Scan, logging.Discard())
}

func findExport(rec *model.FileRecord, name string) *model.ExportSymbol {
	for i := range rec.Exports {
		if rec.Exports[i].Name == name {
			return &rec.Exports[i]
		}
	}
	return nil
}

func TestExtractExportedFunctions(t *testing.T) {
	src := `import { db } from './db'

export function listUsers(limit: number) {
  return db.query(limit)
}

export async function createUser(
  name: string,
  email: string,
) {
  return db.insert({ name, email })
}

export default function handler(req, res) {}
`
	rec := newExtractor().ExtractFile("api/users.ts", []byte(src))

	fn := findExport(rec, "listUsers")
	if fn == nil {
		t.Fatal("listUsers not extracted")
	}
	if fn.Kind != model.ExportFunction {
		t.Errorf("expected function kind, got %s", fn.Kind)
	}
	if fn.Line != 3 {
		t.Errorf("expected line 3, got %d", fn.Line)
	}
	if fn.Params != "limit: number" {
		t.Errorf("unexpected params: %q", fn.Params)
	}

	multi := findExport(rec, "createUser")
	if multi == nil {
		t.Fatal("multi-line createUser not extracted")
	}
	if multi.Line != 7 {
		t.Errorf("expected starting line 7, got %d", multi.Line)
	}
	if !strings.Contains(multi.Params, "name: string") {
		t.Errorf("multi-line params not rendered: %q", multi.Params)
	}

	def := findExport(rec, "handler")
	if def == nil {
		t.Fatal("default export not extracted")
	}
	if !def.IsDefault {
		t.Error("expected handler to be marked default")
	}
}

func TestExtractHookAndComponentKinds(t *testing.T) {
	hookSrc := "export function useUsers() {}\n"
	rec := newExtractor().ExtractFile("hooks/useUsers.ts", []byte(hookSrc))
	if sym := findExport(rec, "useUsers"); sym == nil || sym.Kind != model.ExportHook {
		t.Errorf("expected hook kind, got %+v", sym)
	}

	compSrc := "export const UserCard = ({ user }) => <div>{user.name}</div>\n" +
		"export default function UserList() { return null }\n"
	rec = newExtractor().ExtractFile("components/UserCard.tsx", []byte(compSrc))
	if sym := findExport(rec, "UserCard"); sym == nil || sym.Kind != model.ExportComponent {
		t.Errorf("expected component kind for UserCard, got %+v", sym)
	}
	if sym := findExport(rec, "UserList"); sym == nil || sym.Kind != model.ExportComponent {
		t.Errorf("expected component kind for UserList, got %+v", sym)
	}

	// PascalCase outside a JSX file stays a plain function.
	rec = newExtractor().ExtractFile("lib/Builder.ts", []byte("export function Builder() {}\n"))
	if sym := findExport(rec, "Builder"); sym == nil || sym.Kind != model.ExportFunction {
		t.Errorf("expected function kind outside jsx, got %+v", sym)
	}
}

func TestExtractConstTypeClass(t *testing.T) {
	src := `export const MAX_RETRIES = 3
export const fetchUsers = async () => []
export type User = { id: string }
export interface Props { title: string }
export class UserStore {}
`
	rec := newExtractor().ExtractFile("lib/store.ts", []byte(src))

	if sym := findExport(rec, "MAX_RETRIES"); sym == nil || sym.Kind != model.ExportConstant {
		t.Errorf("expected constant, got %+v", sym)
	}
	if sym := findExport(rec, "fetchUsers"); sym == nil || sym.Kind != model.ExportFunction {
		t.Errorf("arrow const should be a function, got %+v", sym)
	}
	if sym := findExport(rec, "User"); sym == nil || sym.Kind != model.ExportType {
		t.Errorf("expected type, got %+v", sym)
	}
	if sym := findExport(rec, "Props"); sym == nil || sym.Kind != model.ExportType {
		t.Errorf("expected type for interface, got %+v", sym)
	}
	if sym := findExport(rec, "UserStore"); sym == nil || sym.Kind != model.ExportClass {
		t.Errorf("expected class, got %+v", sym)
	}
}

func TestExtractImports(t *testing.T) {
	src := `import React, { useState, useEffect } from 'react'
import * as path from 'path'
import { client } from '../db/client'
import './styles.css'
import {
  parseQuery,
  buildResponse as respond,
} from './helpers'
const fs = require('fs')
const mod = await import('./lazy')
`
	rec := newExtractor().ExtractFile("api/users.ts", []byte(src))

	bySource := make(map[string][]string)
	for _, imp := range rec.Imports {
		bySource[imp.Source] = imp.Names
	}

	react := bySource["react"]
	if len(react) != 3 || react[0] != "React" || react[1] != "useState" {
		t.Errorf("unexpected react bindings: %v", react)
	}
	if got := bySource["path"]; len(got) != 1 || got[0] != "path" {
		t.Errorf("unexpected namespace binding: %v", got)
	}
	if got := bySource["../db/client"]; len(got) != 1 || got[0] != "client" {
		t.Errorf("unexpected client binding: %v", got)
	}
	if _, ok := bySource["./styles.css"]; !ok {
		t.Error("bare import not recorded")
	}
	helpers := bySource["./helpers"]
	if len(helpers) != 2 || helpers[1] != "respond" {
		t.Errorf("multi-line aliased bindings wrong: %v", helpers)
	}
	if got := bySource["fs"]; len(got) != 1 || got[0] != "fs" {
		t.Errorf("require binding wrong: %v", got)
	}
	if _, ok := bySource["./lazy"]; !ok {
		t.Error("dynamic import not recorded")
	}
}

func TestExtractServiceCalls(t *testing.T) {
	src := `import { createClient } from '@supabase/supabase-js'

const supabase = createClient(url, key)

// openai mentioned only in this comment
export async function ask(prompt: string) {
  const res = await openai.chat.completions.create({ model, prompt })
  return res
}
`
	rec := newExtractor().ExtractFile("lib/ai.ts", []byte(src))

	counts := make(map[string]int)
	for _, c := range rec.ExternalCalls {
		counts[c.Service]++
	}
	if counts["supabase"] != 2 {
		t.Errorf("expected 2 supabase call sites, got %d", counts["supabase"])
	}
	if counts["openai"] != 1 {
		t.Errorf("expected 1 openai call site (comment skipped), got %d", counts["openai"])
	}

	for _, c := range rec.ExternalCalls {
		if c.Line < 1 || c.Detail == "" {
			t.Errorf("call site missing line or detail: %+v", c)
		}
	}
}

func TestExtractDBOperations(t *testing.T) {
	src := `export async function loadUsers() {
  const { data } = await supabase.from('users').select('*')
  await supabase.from('audit').insert({ event: 'load' })
}
`
	rec := newExtractor().ExtractFile("db/client.ts", []byte(src))

	want := []string{"insert", "select"}
	if len(rec.DBOperations) != len(want) {
		t.Fatalf("expected %v, got %v", want, rec.DBOperations)
	}
	for i, op := range want {
		if rec.DBOperations[i] != op {
			t.Errorf("expected %s at %d, got %s", op, i, rec.DBOperations[i])
		}
	}
}

func TestExtractDegradesOnBinaryContent(t *testing.T) {
	content := []byte{0xff, 0xfe, 0x00, '\n', 0x01}
	rec := newExtractor().ExtractFile("weird.ts", content)

	if len(rec.Exports) != 0 || len(rec.Imports) != 0 {
		t.Errorf("binary content should yield no structure: %+v", rec)
	}
	if rec.Lines == 0 {
		t.Error("line count should still be reported")
	}
}

func TestExtractOversizedFile(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Scan.MaxFileSizeBytes = 10
	e := New(&cfg.Scan, logging.Discard())

	rec := e.ExtractFile("big.ts", []byte("export const a = 1\nexport const b = 2\n"))
	if len(rec.Exports) != 0 {
		t.Errorf("oversized file should degrade, got exports %v", rec.Exports)
	}
	if rec.Lines != 2 {
		t.Errorf("expected 2 lines, got %d", rec.Lines)
	}
}

func TestExtractZeroExportsIsValid(t *testing.T) {
	rec := newExtractor().ExtractFile("scripts/run.ts", []byte("console.log('hi')\n"))
	if rec.Exports == nil {
		t.Error("exports should be an empty slice, not nil")
	}
	if len(rec.Exports) != 0 {
		t.Errorf("expected no exports, got %v", rec.Exports)
	}
}
