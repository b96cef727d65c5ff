// This file is part of sdcart.
//
// sdcart is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// sdcart is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with sdcart.  If not, see <https://www.gnu.org/licenses/>.

package prefs

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// Value represents the actual Go preference value.
type Value any

// pref is the interface every preference type satisfies. Types that satisfy
// the interface can be added to a Disk.
type pref interface {
	fmt.Stringer
	Set(value Value) error
	Get() Value
	Reset() error
}

// hooks are called before and after a preference value is stored. An error
// from the pre hook prevents the value from being stored.
type hooks struct {
	pre  func(value Value) error
	post func(value Value) error
}

// SetHookPre sets the callback function to be called just before the
// preference value is updated.
func (h *hooks) SetHookPre(f func(value Value) error) {
	h.pre = f
}

// SetHookPost sets the callback function to be called just after the
// preference value is updated.
func (h *hooks) SetHookPost(f func(value Value) error) {
	h.post = f
}

func (h *hooks) store(nv Value, store func()) error {
	if h.pre != nil {
		if err := h.pre(nv); err != nil {
			return err
		}
	}
	store()
	if h.post != nil {
		if err := h.post(nv); err != nil {
			return err
		}
	}
	return nil
}

// Bool implements a boolean type in the prefs system.
type Bool struct {
	hooks
	value   atomic.Bool
	initial bool
}

func (p *Bool) String() string {
	return fmt.Sprintf("%v", p.value.Load())
}

// Set new value to Bool type. New value must be of type bool or string. A
// string value of anything other than "true" (case insensitive) will set the
// value to false.
func (p *Bool) Set(v Value) error {
	var nv bool
	switch v := v.(type) {
	case bool:
		nv = v
	case string:
		nv = strings.ToLower(strings.TrimSpace(v)) == "true"
	default:
		return fmt.Errorf("prefs: cannot convert %T to prefs.Bool", v)
	}
	return p.store(nv, func() { p.value.Store(nv) })
}

// Get returns the raw pref value.
func (p *Bool) Get() Value {
	return p.value.Load()
}

// Bool returns the value as a bool without the need for a type assertion.
func (p *Bool) Bool() bool {
	return p.value.Load()
}

// SetDefault sets the value that Reset() returns the preference to. The
// current value is also changed.
func (p *Bool) SetDefault(v bool) error {
	p.initial = v
	return p.Set(v)
}

// Reset sets the boolean value to its default.
func (p *Bool) Reset() error {
	return p.Set(p.initial)
}

// String implements a string type in the prefs system.
type String struct {
	hooks
	maxLen  int
	value   atomic.Value // string
	initial string
}

func (p *String) String() string {
	ov := p.value.Load()
	if ov == nil {
		return ""
	}
	return ov.(string)
}

// SetMaxLen sets the maximum length for a string when it is set. To set no
// limit use a value less than or equal to zero. Note that the existing string
// will be cropped if necessary.
func (p *String) SetMaxLen(max int) {
	p.maxLen = max
	if s := p.String(); p.maxLen > 0 && len(s) > p.maxLen {
		p.value.Store(s[:p.maxLen])
	}
}

// Set new value to String type. New value must be of type string.
//
// Values read from the preferences file are quoted so that leading and
// trailing spaces are preserved. The quotes are removed here.
func (p *String) Set(v Value) error {
	nv, ok := v.(string)
	if !ok {
		return fmt.Errorf("prefs: cannot convert %T to prefs.String", v)
	}
	if u, err := strconv.Unquote(nv); err == nil {
		nv = u
	}
	if p.maxLen > 0 && len(nv) > p.maxLen {
		nv = nv[:p.maxLen]
	}
	return p.store(nv, func() { p.value.Store(nv) })
}

// Get returns the raw pref value.
func (p *String) Get() Value {
	return p.String()
}

// SetDefault sets the value that Reset() returns the preference to. The
// current value is also changed.
func (p *String) SetDefault(v string) error {
	p.initial = v
	return p.Set(v)
}

// Reset sets the string value to its default.
func (p *String) Reset() error {
	return p.Set(p.initial)
}

// Int implements an integer type in the prefs system.
type Int struct {
	hooks
	value   atomic.Int64
	initial int
}

func (p *Int) String() string {
	return fmt.Sprintf("%d", p.value.Load())
}

// Set new value to Int type. New value can be an int or a string. Strings
// are parsed with base prefix rules so hexadecimal values such as 0x0450 are
// accepted.
func (p *Int) Set(v Value) error {
	var nv int
	switch v := v.(type) {
	case int64:
		nv = int(v)
	case int32:
		nv = int(v)
	case int:
		nv = v
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 0, 64)
		if err != nil {
			return fmt.Errorf("prefs: cannot convert %T to prefs.Int: %w", v, err)
		}
		nv = int(n)
	default:
		return fmt.Errorf("prefs: cannot convert %T to prefs.Int", v)
	}
	return p.store(nv, func() { p.value.Store(int64(nv)) })
}

// Get returns the raw pref value.
func (p *Int) Get() Value {
	return int(p.value.Load())
}

// Int returns the value as an int without the need for a type assertion.
func (p *Int) Int() int {
	return int(p.value.Load())
}

// SetDefault sets the value that Reset() returns the preference to. The
// current value is also changed.
func (p *Int) SetDefault(v int) error {
	p.initial = v
	return p.Set(v)
}

// Reset sets the int value to its default.
func (p *Int) Reset() error {
	return p.Set(p.initial)
}

// Duration implements a time.Duration type in the prefs system. In the
// preferences file the value is written in the form accepted by
// time.ParseDuration().
type Duration struct {
	hooks
	value   atomic.Int64
	initial time.Duration
}

func (p *Duration) String() string {
	return time.Duration(p.value.Load()).String()
}

// Set new value to Duration type. New value can be a time.Duration or a
// string.
func (p *Duration) Set(v Value) error {
	var nv time.Duration
	switch v := v.(type) {
	case time.Duration:
		nv = v
	case string:
		var err error
		nv, err = time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("prefs: cannot convert %T to prefs.Duration: %w", v, err)
		}
	default:
		return fmt.Errorf("prefs: cannot convert %T to prefs.Duration", v)
	}
	if nv < 0 {
		return fmt.Errorf("prefs: negative duration (%v)", nv)
	}
	return p.store(nv, func() { p.value.Store(int64(nv)) })
}

// Get returns the raw pref value.
func (p *Duration) Get() Value {
	return time.Duration(p.value.Load())
}

// Duration returns the value as a time.Duration.
func (p *Duration) Duration() time.Duration {
	return time.Duration(p.value.Load())
}

// SetDefault sets the value that Reset() returns the preference to. The
// current value is also changed.
func (p *Duration) SetDefault(v time.Duration) error {
	p.initial = v
	return p.Set(v)
}

// Reset sets the duration value to its default.
func (p *Duration) Reset() error {
	return p.Set(p.initial)
}
