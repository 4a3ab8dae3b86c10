package config

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/abacus/internal/calc"
	"github.com/roach88/abacus/internal/ir"
)

//go:embed schema.cue
var schemaCUE string

// Config is a validated abacus configuration.
type Config struct {
	Limits Limits
	Keymap Keymap
}

// Limits bounds operand entry and result formatting.
type Limits struct {
	MaxInputLength int
	FractionDigits int
}

// Default returns the configuration described by the schema defaults alone.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded schema invalid: %v", err))
	}
	return cfg
}

// Load reads configuration from path, which may be a .cue file or a
// directory of .cue files. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fromCUE(ErrCodeLoadFailed, err)
	}

	value := schema
	if path != "" {
		user, err := loadUser(ctx, path)
		if err != nil {
			return nil, err
		}
		value = schema.Unify(user)
	}

	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, fromCUE(ErrCodeInvalid, err)
	}
	return decode(value)
}

func loadUser(ctx *cue.Context, path string) (cue.Value, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return cue.Value{}, &ConfigError{Code: ErrCodeNotFound, Message: fmt.Sprintf("config not found: %s", path)}
	}
	if err != nil {
		return cue.Value{}, &ConfigError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing config: %v", err)}
	}

	if !info.IsDir() {
		data, err := os.ReadFile(path)
		if err != nil {
			return cue.Value{}, &ConfigError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("reading config: %v", err)}
		}
		v := ctx.CompileBytes(data, cue.Filename(path))
		if err := v.Err(); err != nil {
			return cue.Value{}, fromCUE(ErrCodeLoadFailed, err)
		}
		return v, nil
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: path})
	if len(instances) == 0 {
		return cue.Value{}, &ConfigError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return cue.Value{}, fromCUE(ErrCodeLoadFailed, inst.Err)
	}
	v := ctx.BuildInstance(inst)
	if err := v.Err(); err != nil {
		return cue.Value{}, fromCUE(ErrCodeLoadFailed, err)
	}
	return v, nil
}

func decode(v cue.Value) (*Config, error) {
	cfg := &Config{}

	maxLen, err := lookupInt(v, "limits.max_input_length")
	if err != nil {
		return nil, err
	}
	digits, err := lookupInt(v, "limits.fraction_digits")
	if err != nil {
		return nil, err
	}
	cfg.Limits = Limits{MaxInputLength: maxLen, FractionDigits: digits}

	aliases := map[string]string{}
	iter, err := v.LookupPath(cue.ParsePath("keymap")).Fields()
	if err != nil {
		return nil, fromCUE(ErrCodeInvalid, err)
	}
	for iter.Next() {
		button, err := withDefault(iter.Value()).String()
		if err != nil {
			return nil, fromCUE(ErrCodeInvalid, err)
		}
		aliases[iter.Selector().Unquoted()] = button
	}
	cfg.Keymap = NewKeymap(aliases)

	return cfg, nil
}

func lookupInt(v cue.Value, path string) (int, error) {
	n, err := withDefault(v.LookupPath(cue.ParsePath(path))).Int64()
	if err != nil {
		return 0, fromCUE(ErrCodeInvalid, err)
	}
	return int(n), nil
}

// withDefault resolves a disjunction to its default, if it has one.
func withDefault(v cue.Value) cue.Value {
	if d, ok := v.Default(); ok {
		return d
	}
	return v
}

// Engine builds a calculator engine with these limits.
func (c *Config) Engine() *calc.Engine {
	return calc.New(
		calc.WithMaxInputLength(c.Limits.MaxInputLength),
		calc.WithFractionDigits(c.Limits.FractionDigits),
	)
}

// Hash returns the content hash recorded on journaled sessions.
// Two configurations hash equally iff they behave identically.
func (c *Config) Hash() (string, error) {
	keymap := make(map[string]any, len(c.Keymap.aliases))
	for label, button := range c.Keymap.aliases {
		keymap[label] = button
	}
	return ir.ConfigHash(map[string]any{
		"limits": map[string]any{
			"max_input_length": c.Limits.MaxInputLength,
			"fraction_digits":  c.Limits.FractionDigits,
		},
		"keymap": keymap,
	})
}
