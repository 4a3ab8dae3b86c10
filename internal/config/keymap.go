package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"

	"github.com/roach88/abacus/internal/calc"
)

// ErrUnknownLabel is wrapped by Resolve for labels that name no button.
var ErrUnknownLabel = errors.New("unknown label")

// Keymap maps typed labels to calculator buttons.
//
// Labels are compared after trimming, NFC normalization and width folding,
// so "７" and "7" are the same key and so are "＋" and "+".
type Keymap struct {
	aliases map[string]string
}

// NewKeymap builds a keymap from alias → button label pairs.
func NewKeymap(aliases map[string]string) Keymap {
	km := Keymap{aliases: make(map[string]string, len(aliases))}
	for label, button := range aliases {
		km.aliases[normalizeLabel(label)] = button
	}
	return km
}

// Resolve maps label to the button press it stands for.
// Aliases are tried first, then canonical button labels.
func (k Keymap) Resolve(label string) (calc.Event, error) {
	key := normalizeLabel(label)
	if button, ok := k.aliases[key]; ok {
		key = button
	}
	ev, err := calc.ParseEvent(key)
	if err != nil {
		return calc.Event{}, fmt.Errorf("%w %q", ErrUnknownLabel, label)
	}
	return ev, nil
}

// Aliases returns the alias labels in sorted order.
func (k Keymap) Aliases() []string {
	labels := make([]string, 0, len(k.aliases))
	for label := range k.aliases {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Button returns the button an alias maps to.
func (k Keymap) Button(alias string) (string, bool) {
	b, ok := k.aliases[normalizeLabel(alias)]
	return b, ok
}

func normalizeLabel(label string) string {
	return width.Fold.String(norm.NFC.String(strings.TrimSpace(label)))
}
