package interpreter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/andresuchdata/stockbin/internal/domain"
)

var binCommandPattern = regexp.MustCompile(`(?i)^\s*(send|sent|receive|received|return|returned)\s+(\d+)\s+(.+?)\s+(to|from)\s+(.+?)\s*\.?\s*$`)

const binCommandExample = `send 5 Chep Plastic to Ziyard`

// ParseBinCommand turns "(send|receive|return) <qty> <bin> (to|from) <party>"
// into a movement. The bin must be one of binTypes; the party is taken as typed.
func ParseBinCommand(text string, binTypes []domain.BinType) (domain.MovementInput, error) {
	m := binCommandPattern.FindStringSubmatch(text)
	if m == nil {
		return domain.MovementInput{}, fmt.Errorf("%w: could not understand %q, try something like %q",
			domain.ErrValidation, strings.TrimSpace(text), binCommandExample)
	}

	movement, err := domain.ParseMovementType(m[1])
	if err != nil {
		return domain.MovementInput{}, err
	}

	qty, err := strconv.Atoi(m[2])
	if err != nil || qty <= 0 {
		return domain.MovementInput{}, fmt.Errorf("%w: quantity must be a positive whole number", domain.ErrValidation)
	}

	bt, ok := matchBinType(binTypes, m[3])
	if !ok {
		return domain.MovementInput{}, fmt.Errorf("%w: unknown bin type %q, known types: %s",
			domain.ErrValidation, strings.TrimSpace(m[3]), binTypeNames(binTypes))
	}

	return domain.MovementInput{
		Type:      movement,
		Quantity:  qty,
		BinName:   bt.Name,
		BinTypeID: bt.ID,
		PartyName: strings.TrimSpace(m[5]),
	}, nil
}

// matchBinType tries the exact name first, then without a trailing "bins"/"bin"/"s".
func matchBinType(types []domain.BinType, raw string) (domain.BinType, bool) {
	name := strings.TrimSpace(raw)
	candidates := []string{name}
	lower := strings.ToLower(name)
	for _, suffix := range []string{" bins", " bin", "s"} {
		if strings.HasSuffix(lower, suffix) {
			candidates = append(candidates, strings.TrimSpace(name[:len(name)-len(suffix)]))
		}
	}
	for _, c := range candidates {
		if bt, ok := domain.FindBinType(types, c); ok {
			return bt, true
		}
	}
	return domain.BinType{}, false
}

func binTypeNames(types []domain.BinType) string {
	if len(types) == 0 {
		return "none configured"
	}
	names := make([]string, 0, len(types))
	for _, t := range types {
		names = append(names, t.Name)
	}
	return strings.Join(names, ", ")
}
