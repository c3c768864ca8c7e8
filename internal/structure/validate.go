// Package structure validates zone structure definitions and derives bin
// addresses from them.
package structure

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/erazemk/regali/internal/model"
)

// MaxCodeLength is the longest accepted corridor, shelf, position or zone code.
const MaxCodeLength = 16

// MaxLabelLength is the longest accepted label.
const MaxLabelLength = 64

var codePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator with the "bincode" tag registered.
// A bincode may only contain letters, digits and underscores, so it can
// never contain the address separator.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		if err := v.RegisterValidation("bincode", func(fl validator.FieldLevel) bool {
			return codePattern.MatchString(fl.Field().String())
		}); err != nil {
			panic(fmt.Sprintf("registering bincode validation: %v", err))
		}
		validate = v
	})
	return validate
}

// Violation is one problem found in a submitted structure.
type Violation struct {
	Path       string `json:"path"`
	Coordinate string `json:"coordinate,omitempty"`
	Message    string `json:"message"`
}

// ValidationError lists every violation found in a structure.
type ValidationError struct {
	Violations []Violation `json:"violations"`
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 1 {
		return "invalid structure: " + e.Violations[0].Message
	}
	return fmt.Sprintf("invalid structure: %d violations", len(e.Violations))
}

// IsValidationError reports whether err is (or wraps) a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

type collector struct {
	violations []Violation
}

func (c *collector) add(path, coord, format string, args ...any) {
	c.violations = append(c.violations, Violation{
		Path:       path,
		Coordinate: coord,
		Message:    fmt.Sprintf(format, args...),
	})
}

// code normalizes and checks one code. Every failed rule is recorded.
func (c *collector) code(path, coord, raw string) string {
	code := strings.ToUpper(strings.TrimSpace(raw))
	err := Validator().Var(code, fmt.Sprintf("required,max=%d,bincode", MaxCodeLength))
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			c.add(path, coord, "code %q %s", raw, ruleMessage(fe))
		}
	}
	return code
}

func (c *collector) label(path, coord, raw, fallback string) string {
	label := strings.TrimSpace(raw)
	if len(label) > MaxLabelLength {
		c.add(path, coord, "label must be at most %d characters", MaxLabelLength)
	}
	if label == "" {
		return fallback
	}
	return label
}

func (c *collector) capacity(path, coord string, v *int) *int {
	if v == nil {
		return nil
	}
	if *v < 0 {
		c.add(path, coord, "capacity must not be negative")
	}
	n := *v
	return &n
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "bincode":
		return "may only contain letters, digits and underscores"
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}

// Normalize validates a structure definition and returns its normalized
// form: codes trimmed and upper-cased, labels trimmed and defaulted to their
// code. All violations are reported together in a *ValidationError.
func Normalize(def model.StructureDefinition) (model.StructureDefinition, error) {
	c := &collector{}
	out := model.StructureDefinition{DefaultCapacity: def.DefaultCapacity}

	if def.DefaultCapacity < 0 {
		c.add("defaultCapacity", "", "default capacity must not be negative")
	}
	if len(def.Corridors) == 0 {
		c.add("corridors", "", "structure must contain at least one corridor")
	}

	corridorSeen := make(map[string]int)
	for ci, corridor := range def.Corridors {
		cPath := fmt.Sprintf("corridors[%d]", ci)
		cCode := c.code(cPath+".code", corridor.Code, corridor.Code)
		if prev, dup := corridorSeen[cCode]; dup && cCode != "" {
			c.add(cPath+".code", cCode, "duplicate corridor code %q (also at corridors[%d])", cCode, prev)
		} else {
			corridorSeen[cCode] = ci
		}

		nc := model.Corridor{
			Code:  cCode,
			Label: c.label(cPath+".label", cCode, corridor.Label, cCode),
		}
		if len(corridor.Shelves) == 0 {
			c.add(cPath+".shelves", cCode, "corridor %q must contain at least one shelf", cCode)
		}

		shelfSeen := make(map[string]int)
		for si, shelf := range corridor.Shelves {
			sPath := fmt.Sprintf("%s.shelves[%d]", cPath, si)
			sCode := c.code(sPath+".code", cCode+"/"+shelf.Code, shelf.Code)
			sCoord := cCode + "/" + sCode
			if prev, dup := shelfSeen[sCode]; dup && sCode != "" {
				c.add(sPath+".code", sCoord, "duplicate shelf code %q in corridor %q (also at shelves[%d])", sCode, cCode, prev)
			} else {
				shelfSeen[sCode] = si
			}

			ns := model.Shelf{
				Code:     sCode,
				Label:    c.label(sPath+".label", sCoord, shelf.Label, sCode),
				Capacity: c.capacity(sPath+".capacity", sCoord, shelf.Capacity),
			}
			if len(shelf.Positions) == 0 {
				c.add(sPath+".positions", sCoord, "shelf %q must contain at least one position", sCoord)
			}

			posSeen := make(map[string]int)
			for pi, pos := range shelf.Positions {
				pPath := fmt.Sprintf("%s.positions[%d]", sPath, pi)
				pCode := c.code(pPath+".code", sCoord+"/"+pos.Code, pos.Code)
				pCoord := sCoord + "/" + pCode
				if prev, dup := posSeen[pCode]; dup && pCode != "" {
					c.add(pPath+".code", pCoord, "duplicate position code %q on shelf %q (also at positions[%d])", pCode, sCoord, prev)
				} else {
					posSeen[pCode] = pi
				}

				ns.Positions = append(ns.Positions, model.Position{
					Code:     pCode,
					Label:    c.label(pPath+".label", pCoord, pos.Label, pCode),
					Capacity: c.capacity(pPath+".capacity", pCoord, pos.Capacity),
				})
			}
			nc.Shelves = append(nc.Shelves, ns)
		}
		out.Corridors = append(out.Corridors, nc)
	}

	if len(c.violations) > 0 {
		return model.StructureDefinition{}, &ValidationError{Violations: c.violations}
	}
	return out, nil
}
