// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package gate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
	"go.uber.org/zap"
)

// maxScriptSteps bounds a single script check.
const maxScriptSteps = 1_000_000

// ScriptSpec declares a gate implemented in Starlark.
type ScriptSpec struct {
	Name      string
	Path      string
	Priority  int
	Required  bool
	AppliesTo []ArtifactType
}

// RegisterScript loads a Starlark gate from disk and registers it. A zero
// priority means DefaultPriority.
// Load and exec errors surface here; runtime errors become required
// failures when the gate runs.
func (e *Engine) RegisterScript(spec ScriptSpec) error {
	src, err := os.ReadFile(spec.Path)
	if err != nil {
		return fmt.Errorf("gate %s: %w", spec.Name, err)
	}
	check, err := CompileScript(spec.Path, src)
	if err != nil {
		return fmt.Errorf("gate %s: %w", spec.Name, err)
	}
	priority := spec.Priority
	if priority == 0 {
		priority = DefaultPriority
	}
	opts := []Option{WithPriority(priority), Required(spec.Required)}
	if len(spec.AppliesTo) > 0 {
		opts = append(opts, For(spec.AppliesTo...))
	}
	return e.Register(spec.Name, check, opts...)
}

// CompileScript executes a Starlark module that defines
// check(artifact, strictness) and returns it as a CheckFunc. check may
// return a status string, a bool, or a dict with status, message and
// details.
func CompileScript(filename string, src any) (CheckFunc, error) {
	thread := &starlark.Thread{Name: "load:" + filename}
	globals, err := starlark.ExecFileOptions(&syntax.FileOptions{}, thread, filename, src, scriptBuiltins)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filename, err)
	}
	fn, ok := globals["check"].(starlark.Callable)
	if !ok {
		return nil, fmt.Errorf("load %s: no check(artifact, strictness) function", filename)
	}
	globals.Freeze()

	return func(ctx context.Context, a *Artifact, env Env) (Result, error) {
		thread := &starlark.Thread{
			Name: "gate:" + filename,
			Print: func(_ *starlark.Thread, msg string) {
				env.Logger.Debug("gate script", zap.String("script", filename), zap.String("msg", msg))
			},
		}
		thread.SetMaxExecutionSteps(maxScriptSteps)
		done := make(chan struct{})
		defer close(done)
		go func() {
			select {
			case <-ctx.Done():
				thread.Cancel(ctx.Err().Error())
			case <-done:
			}
		}()

		args := starlark.Tuple{artifactValue(a), starlark.String(env.Strictness)}
		v, err := starlark.Call(thread, fn, args, nil)
		if err != nil {
			var ee *starlark.EvalError
			if errors.As(err, &ee) {
				return Result{}, errors.New(ee.Backtrace())
			}
			return Result{}, err
		}
		return scriptResult(v)
	}, nil
}

var scriptBuiltins = starlark.StringDict{
	"matches":        starlark.NewBuiltin("matches", builtinMatches),
	"PASSED":         starlark.String(Passed),
	"FAILED":         starlark.String(Failed),
	"WARNING":        starlark.String(Warning),
	"PENDING_REVIEW": starlark.String(PendingReview),
}

// matches(pattern, text) reports whether the RE2 pattern matches text.
func builtinMatches(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var pattern, text string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "pattern", &pattern, "text", &text); err != nil {
		return nil, err
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	return starlark.Bool(re.MatchString(text)), nil
}

func artifactValue(a *Artifact) starlark.Value {
	d := starlark.NewDict(5)
	_ = d.SetKey(starlark.String("name"), starlark.String(a.Name))
	_ = d.SetKey(starlark.String("type"), starlark.String(a.Type))
	_ = d.SetKey(starlark.String("source"), starlark.String(a.Source))
	_ = d.SetKey(starlark.String("transport"), starlark.String(a.Transport))
	_ = d.SetKey(starlark.String("metadata"), toStarlark(a.Metadata))
	return d
}

func scriptResult(v starlark.Value) (Result, error) {
	switch v := v.(type) {
	case starlark.String:
		return statusResult(string(v), "")
	case starlark.Bool:
		if v {
			return Result{Status: Passed}, nil
		}
		return Result{Status: Failed, Message: "check returned False"}, nil
	case *starlark.Dict:
		var status, msg string
		if s, ok, _ := v.Get(starlark.String("status")); ok {
			status, _ = starlark.AsString(s)
		}
		if m, ok, _ := v.Get(starlark.String("message")); ok {
			msg, _ = starlark.AsString(m)
		}
		r, err := statusResult(status, msg)
		if err != nil {
			return r, err
		}
		if d, ok, _ := v.Get(starlark.String("details")); ok {
			if details, ok := fromStarlark(d).(map[string]any); ok {
				r.Details = details
			}
		}
		return r, nil
	}
	return Result{}, fmt.Errorf("check returned %s, want string, bool or dict", v.Type())
}

func statusResult(status, msg string) (Result, error) {
	switch s := Status(status); s {
	case Passed, Failed, Warning, PendingReview:
		return Result{Status: s, Message: msg}, nil
	}
	return Result{}, fmt.Errorf("check returned unknown status %q", status)
}

func toStarlark(v any) starlark.Value {
	switch v := v.(type) {
	case nil:
		return starlark.None
	case string:
		return starlark.String(v)
	case bool:
		return starlark.Bool(v)
	case int:
		return starlark.MakeInt(v)
	case int64:
		return starlark.MakeInt64(v)
	case float64:
		return starlark.Float(v)
	case []any:
		elems := make([]starlark.Value, len(v))
		for i, e := range v {
			elems[i] = toStarlark(e)
		}
		return starlark.NewList(elems)
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		d := starlark.NewDict(len(v))
		for _, k := range keys {
			_ = d.SetKey(starlark.String(k), toStarlark(v[k]))
		}
		return d
	}
	return starlark.String(fmt.Sprint(v))
}

func fromStarlark(v starlark.Value) any {
	switch v := v.(type) {
	case starlark.NoneType:
		return nil
	case starlark.String:
		return string(v)
	case starlark.Bool:
		return bool(v)
	case starlark.Int:
		if i, ok := v.Int64(); ok {
			return i
		}
		return v.String()
	case starlark.Float:
		return float64(v)
	case *starlark.List:
		out := make([]any, v.Len())
		for i := range out {
			out[i] = fromStarlark(v.Index(i))
		}
		return out
	case starlark.Tuple:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = fromStarlark(e)
		}
		return out
	case *starlark.Dict:
		out := make(map[string]any, v.Len())
		for _, kv := range v.Items() {
			k, ok := starlark.AsString(kv[0])
			if !ok {
				k = kv[0].String()
			}
			out[k] = fromStarlark(kv[1])
		}
		return out
	}
	return v.String()
}
