package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/l1jgo/station/internal/core/nodetree"
	"github.com/l1jgo/station/internal/data"
)

// prelude is loaded before any script. Node tables have the same shape as
// YAML templates: {components = {...}, children = {...}}.
const prelude = `
function node(n)
  n = n or {}
  if n.components or n.children then
    return {components = n.components, children = n.children}
  end
  return {children = n}
end

function text(s, extra)
  local c = {Text = s}
  for k, v in pairs(extra or {}) do c[k] = v end
  return {components = c}
end
`

// maxDepth bounds the conversion of nested Lua tables.
const maxDepth = 64

// Engine wraps a single gopher-lua VM that describes HUD trees.
// Single-goroutine access only (game loop).
type Engine struct {
	vm      *lua.LState
	catalog *data.Catalog
	log     *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given directory.
func NewEngine(scriptsDir string, catalog *data.Catalog, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, catalog: catalog, log: log}
	if err := vm.DoString(prelude); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load prelude: %w", err)
	}

	// Load shared scripts first, then the HUD scripts
	for _, sub := range []string{"", "hud"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", p, err)
		}
	}

	return e, nil
}

// loadDir loads all .lua files in a directory in name order.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// Has reports whether a global function called name exists.
func (e *Engine) Has(name string) bool {
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

// Build calls the global Lua function fn and turns the node table it
// returns into a tree.
func (e *Engine) Build(fn string, args ...lua.LValue) (*nodetree.Tree, error) {
	f := e.vm.GetGlobal(fn)
	if f == lua.LNil {
		return nil, fmt.Errorf("lua function %s not found", fn)
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      f,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		return nil, fmt.Errorf("call %s: %w", fn, err)
	}
	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("lua %s returned %s, want a node table", fn, result.Type())
	}
	plain, err := toGo(rt, 0)
	if err != nil {
		return nil, fmt.Errorf("lua %s: %w", fn, err)
	}
	raw, err := yaml.Marshal(plain)
	if err != nil {
		return nil, fmt.Errorf("encode %s result: %w", fn, err)
	}
	tree, err := data.DecodeNode(e.catalog, raw)
	if err != nil {
		return nil, fmt.Errorf("lua %s: %w", fn, err)
	}
	return tree, nil
}

// Table packs a flat Go map into a Lua table for passing to Build.
func (e *Engine) Table(fields map[string]any) *lua.LTable {
	t := e.vm.NewTable()
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		t.RawSetString(k, fromGo(e.vm, fields[k]))
	}
	return t
}

func fromGo(vm *lua.LState, v any) lua.LValue {
	switch x := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(x)
	case int:
		return lua.LNumber(x)
	case int64:
		return lua.LNumber(x)
	case uint64:
		return lua.LNumber(x)
	case float32:
		return lua.LNumber(x)
	case float64:
		return lua.LNumber(x)
	case string:
		return lua.LString(x)
	case []string:
		t := vm.NewTable()
		for _, s := range x {
			t.Append(lua.LString(s))
		}
		return t
	case []float64:
		t := vm.NewTable()
		for _, f := range x {
			t.Append(lua.LNumber(f))
		}
		return t
	default:
		return lua.LString(fmt.Sprint(x))
	}
}

// toGo converts a Lua value to plain Go data for YAML encoding. Tables with
// an array part become slices; other tables become string-keyed maps.
func toGo(v lua.LValue, depth int) (any, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("tables nested deeper than %d", maxDepth)
	}
	switch x := v.(type) {
	case *lua.LNilType:
		return nil, nil
	case lua.LBool:
		return bool(x), nil
	case lua.LNumber:
		return float64(x), nil
	case lua.LString:
		return string(x), nil
	case *lua.LTable:
		if n := x.MaxN(); n > 0 {
			list := make([]any, 0, n)
			for i := 1; i <= n; i++ {
				item, err := toGo(x.RawGetInt(i), depth+1)
				if err != nil {
					return nil, err
				}
				list = append(list, item)
			}
			return list, nil
		}
		m := make(map[string]any)
		var convErr error
		x.ForEach(func(k, val lua.LValue) {
			if convErr != nil {
				return
			}
			item, err := toGo(val, depth+1)
			if err != nil {
				convErr = err
				return
			}
			m[k.String()] = item
		})
		if convErr != nil {
			return nil, convErr
		}
		if len(m) == 0 {
			return nil, nil // {} is both an empty list and an empty map
		}
		return m, nil
	default:
		return nil, fmt.Errorf("cannot convert lua %s", v.Type())
	}
}

func (e *Engine) Close() {
	e.vm.Close()
}
