package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"audiopref/internal/pairing"
	"audiopref/internal/ratings"
	"audiopref/internal/services"
)

const maxBodyBytes = 64 << 10

type loginRequest struct {
	Password string `json:"password" validate:"required,max=256"`
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email,max=320"`
}

type loginResponse struct {
	Success     bool   `json:"success"`
	UserID      string `json:"userId,omitempty"`
	IsDeveloper bool   `json:"isDeveloper"`
	AdminName   string `json:"adminName,omitempty"`
	AdminEmail  string `json:"adminEmail,omitempty"`
}

// pairPayload is a pair echoed back by the client. Playback URLs are
// accepted but never stored.
type pairPayload struct {
	SlotA    string `json:"slotA" validate:"required"`
	SlotB    string `json:"slotB" validate:"required,nefield=SlotA"`
	SlotAURL string `json:"slotAUrl"`
	SlotBURL string `json:"slotBUrl"`
	Label    string `json:"label"`
	Swapped  bool   `json:"swapped"`
}

func (p pairPayload) pair() pairing.Pair {
	return pairing.Pair{
		SlotA: p.SlotA, SlotB: p.SlotB,
		SlotAURL: p.SlotAURL, SlotBURL: p.SlotBURL,
		Label: p.Label, Swapped: p.Swapped,
	}
}

type ratingRequest struct {
	UserID string      `json:"userId" validate:"required,max=320"`
	Pair   pairPayload `json:"pair"`
	ScoreA int         `json:"scoreA" validate:"min=1,max=5"`
	ScoreB int         `json:"scoreB" validate:"min=1,max=5"`
}

type finishRequest struct {
	UserID string `json:"userId" validate:"required,max=320"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decode reads a JSON body into dst and validates it. Failures are tagged
// as validation errors.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, op string, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return services.Wrap(services.ErrValidation, "api", op, "request body is empty", nil)
		}
		return services.Wrap(services.ErrValidation, "api", op, "malformed JSON", err)
	}
	if err := s.validate.Struct(dst); err != nil {
		return services.Wrap(services.ErrValidation, "api", op, describeValidation(err), nil)
	}
	return nil
}

func describeValidation(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := fe.Namespace()
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", field))
		case "min", "max":
			if fe.Kind() == reflect.Int {
				parts = append(parts, fmt.Sprintf("%s must be between %d and %d", field, ratings.MinScore, ratings.MaxScore))
			} else {
				parts = append(parts, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
			}
		case "email":
			parts = append(parts, fmt.Sprintf("%s must be an email address", field))
		case "nefield":
			parts = append(parts, fmt.Sprintf("%s must differ from %s", field, fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}
