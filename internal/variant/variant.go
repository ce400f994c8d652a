// SPDX-License-Identifier: MPL-2.0

// Package variant defines the PoolFormer model variants that can be
// evaluated on ADE20K with the Semantic FPN head, and the config /
// checkpoint paths each variant maps to.
package variant

import (
	"errors"
	"fmt"
)

// Variant names for the PoolFormer model family.
const (
	S12 Name = "s12"
	S24 Name = "s24"
	S36 Name = "s36"
	M36 Name = "m36"
	M48 Name = "m48"
)

// ErrUnknownVariant is the sentinel error wrapped by UnknownVariantError.
var ErrUnknownVariant = errors.New("unknown variant")

type (
	// Name identifies a PoolFormer model size (e.g. "s24").
	Name string

	// Variant is one evaluable model size: its name plus the literal
	// config and checkpoint paths the evaluation tool expects.
	Variant struct {
		// Name is the model size identifier ("s12", "s24", ...).
		Name Name
		// ConfigPath is the evaluation config, relative to the tool's
		// working directory.
		ConfigPath string
		// CheckpointPath is the trained weights file, relative to the
		// tool's working directory.
		CheckpointPath string
	}

	// UnknownVariantError is returned when a variant name is not in the
	// registry.
	UnknownVariantError struct {
		Name Name
	}
)

// Error implements the error interface.
func (e *UnknownVariantError) Error() string {
	return fmt.Sprintf("unknown variant '%s' (known: %s)", e.Name, knownNames())
}

// Unwrap returns ErrUnknownVariant so callers can use errors.Is.
func (e *UnknownVariantError) Unwrap() error { return ErrUnknownVariant }

// String returns the variant name.
func (n Name) String() string { return string(n) }

// IsValid returns whether the Name is a registered variant, and a list
// of validation errors if it is not.
func (n Name) IsValid() (bool, []error) {
	for _, v := range registry {
		if v.Name == n {
			return true, nil
		}
	}
	return false, []error{&UnknownVariantError{Name: n}}
}

// forName builds the Variant for a family member. All ADE20K Semantic
// FPN evaluation runs share the same path scheme; only the size token
// differs.
func forName(n Name) Variant {
	return Variant{
		Name:           n,
		ConfigPath:     fmt.Sprintf("configs/sem_fpn/PoolFormer/fpn_poolformer_%s_ade20k_40k.cfg", n),
		CheckpointPath: fmt.Sprintf("../checkpoint/fpn_poolformer_%s_ade20k_40k.ckpt", n),
	}
}

// registry lists the model family in ascending size order.
var registry = []Variant{
	forName(S12),
	forName(S24),
	forName(S36),
	forName(M36),
	forName(M48),
}

// Lookup returns the Variant for the given name.
func Lookup(name Name) (Variant, error) {
	for _, v := range registry {
		if v.Name == name {
			return v, nil
		}
	}
	return Variant{}, &UnknownVariantError{Name: name}
}

// All returns the registered variants in stable (ascending size) order.
func All() []Variant {
	out := make([]Variant, len(registry))
	copy(out, registry)
	return out
}

// Names returns the registered variant names in stable order.
func Names() []Name {
	names := make([]Name, len(registry))
	for i, v := range registry {
		names[i] = v.Name
	}
	return names
}

func knownNames() string {
	s := ""
	for i, v := range registry {
		if i > 0 {
			s += ", "
		}
		s += string(v.Name)
	}
	return s
}
