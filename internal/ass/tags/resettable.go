/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package tags models override tags of styled subtitle lines: a typed value
// model, a tolerant parser for brace-delimited tag blocks, a simplifier that
// collapses redundant spans, and an emitter that writes the canonical text
// form back out.
package tags

type resettableState uint8

const (
	stateKeep resettableState = iota
	stateReset
	stateOverride
)

// Resettable is a tag slot that distinguishes three situations: the tag is
// absent (keep the previous computed value), the tag resets the slot to the
// style default, or the tag overrides the slot with a concrete value.
//
// Resettable[T] is comparable whenever T is, which the container types rely
// on for their equality checks.
type Resettable[T any] struct {
	state resettableState
	value T
}

// Keep returns the absent slot. It is also the zero value.
func Keep[T any]() Resettable[T] { return Resettable[T]{} }

// Reset returns a slot that restores the style default.
func Reset[T any]() Resettable[T] { return Resettable[T]{state: stateReset} }

// Override returns a slot carrying a concrete value.
func Override[T any](v T) Resettable[T] {
	return Resettable[T]{state: stateOverride, value: v}
}

// IsKeep reports whether the slot leaves the previous value untouched.
func (r Resettable[T]) IsKeep() bool { return r.state == stateKeep }

// IsReset reports whether the slot restores the style default.
func (r Resettable[T]) IsReset() bool { return r.state == stateReset }

// IsSet reports whether the slot does anything at all, i.e. it is a reset
// or an override.
func (r Resettable[T]) IsSet() bool { return r.state != stateKeep }

// Value returns the override value and whether one is present.
func (r Resettable[T]) Value() (T, bool) {
	return r.value, r.state == stateOverride
}

// OverrideFrom copies other into r when other is set. Used when a later tag
// block restates a slot: the later block wins.
func (r *Resettable[T]) OverrideFrom(other Resettable[T]) {
	if other.state != stateKeep {
		*r = other
	}
}

// ClearFrom empties r when other is set. Used when folding a block into an
// animation: slots the animation takes over must not also apply statically.
func (r *Resettable[T]) ClearFrom(other Resettable[T]) {
	if other.state != stateKeep {
		*r = Resettable[T]{}
	}
}

// Option is a tag slot without reset semantics: the tag is either absent or
// carries a value. Global tags (position, origin, fades, clips) use it
// because they cannot be reset back to a default mid-line.
type Option[T any] struct {
	set   bool
	value T
}

// None returns the absent slot. It is also the zero value.
func None[T any]() Option[T] { return Option[T]{} }

// Some returns a slot carrying a value.
func Some[T any](v T) Option[T] { return Option[T]{set: true, value: v} }

// IsSet reports whether the slot carries a value.
func (o Option[T]) IsSet() bool { return o.set }

// Value returns the value and whether one is present.
func (o Option[T]) Value() (T, bool) { return o.value, o.set }

// MustValue returns the value and panics when absent. For use after IsSet.
func (o Option[T]) MustValue() T {
	if !o.set {
		panic("tags: MustValue on empty Option")
	}
	return o.value
}

// OverrideFrom copies other into o when other is set.
func (o *Option[T]) OverrideFrom(other Option[T]) {
	if other.set {
		*o = other
	}
}

// ClearFrom empties o when other is set.
func (o *Option[T]) ClearFrom(other Option[T]) {
	if other.set {
		*o = Option[T]{}
	}
}
