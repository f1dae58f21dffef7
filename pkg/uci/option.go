package uci

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Option is one UCI-declared engine setting: something the GUI can
// list at "uci" time and change with "setoption".
type Option interface {
	UciName() string
	UciString() string
	Set(s string) error
}

type BoolOption struct {
	Name  string
	Value *bool
}

func (opt *BoolOption) UciName() string { return opt.Name }

func (opt *BoolOption) UciString() string {
	return fmt.Sprintf("option name %v type %v default %v",
		opt.Name, "check", *opt.Value)
}

func (opt *BoolOption) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*opt.Value = v
	return nil
}

type IntOption struct {
	Name  string
	Min   int
	Max   int
	Value *int
}

func (opt *IntOption) UciName() string { return opt.Name }

func (opt *IntOption) UciString() string {
	return fmt.Sprintf("option name %v type %v default %v min %v max %v",
		opt.Name, "spin", *opt.Value, opt.Min, opt.Max)
}

func (opt *IntOption) Set(s string) error {
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	if v < opt.Min || v > opt.Max {
		return errors.New("argument out of range")
	}
	*opt.Value = v
	return nil
}

type StringOption struct {
	Name  string
	Value *string
}

func (opt *StringOption) UciName() string { return opt.Name }

func (opt *StringOption) UciString() string {
	var def = *opt.Value
	if def == "" {
		def = "<empty>"
	}
	return fmt.Sprintf("option name %v type %v default %v", opt.Name, "string", def)
}

func (opt *StringOption) Set(s string) error {
	*opt.Value = s
	return nil
}

// ComboOption is a string constrained to one of Combos, the shape
// "Style" needs. OnSet, when non-nil, runs after a successful Set -
// the hook a caller uses to translate the chosen string into its own
// enum instead of keeping a redundant *string around.
type ComboOption struct {
	Name   string
	Combos []string
	Value  *string
	OnSet  func(string)
}

func (opt *ComboOption) UciName() string { return opt.Name }

func (opt *ComboOption) UciString() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "option name %v type combo default %v", opt.Name, *opt.Value)
	for _, c := range opt.Combos {
		fmt.Fprintf(&sb, " var %v", c)
	}
	return sb.String()
}

func (opt *ComboOption) Set(s string) error {
	for _, c := range opt.Combos {
		if strings.EqualFold(c, s) {
			*opt.Value = c
			if opt.OnSet != nil {
				opt.OnSet(c)
			}
			return nil
		}
	}
	return errors.New("unknown combo value")
}
