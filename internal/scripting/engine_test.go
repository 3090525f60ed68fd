package scripting

import (
	"os"
	"path/filepath"
	"testing"
)

func writeScript(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestEngineCallsTuningFunctions(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, filepath.Join(dir, "movement"), "drag.lua", `
function movement_drag(dt)
  return 1 - 0.5 * dt
end`)
	writeScript(t, filepath.Join(dir, "regen"), "rate.lua", `
function regen_rate(ctx)
  if ctx.entities > 100 then return 0.5 end
  return ctx.dt * 2
end`)
	writeScript(t, dir, "README.txt", "not lua")

	e, err := NewEngine(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	if !e.Has("movement_drag") || e.Has("nope") {
		t.Fatal("Has reports wrong globals")
	}
	if got := e.Drag(0.5); got != 0.75 {
		t.Fatalf("Drag(0.5) = %v", got)
	}
	if got := e.RegenRate(RegenContext{DT: 0.25, Entities: 10}); got != 0.5 {
		t.Fatalf("RegenRate small = %v", got)
	}
	if got := e.RegenRate(RegenContext{DT: 0.25, Entities: 500}); got != 0.5 {
		t.Fatalf("RegenRate large = %v", got)
	}
}

func TestEngineFallsBackWithoutScripts(t *testing.T) {
	e, err := NewEngine(filepath.Join(t.TempDir(), "missing"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()
	if e.Drag(1) != 1 || e.RegenRate(RegenContext{}) != 1 {
		t.Fatal("expected neutral defaults")
	}
}

func TestEngineFallsBackOnScriptError(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "bad.lua", `
function movement_drag(dt) error("boom") end
function regen_rate(ctx) return "fast" end`)
	e, err := NewEngine(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()
	if e.Drag(1) != 1 {
		t.Fatal("failed drag call should fall back to 1")
	}
	if e.RegenRate(RegenContext{}) != 1 {
		t.Fatal("non-number regen rate should fall back to 1")
	}
}

func TestEngineRejectsBrokenScript(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "broken.lua", "function (")
	if _, err := NewEngine(dir, nil); err == nil {
		t.Fatal("expected load error")
	}
}
