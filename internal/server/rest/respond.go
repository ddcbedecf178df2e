package rest

import (
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/foodgram/internal/common"
	"github.com/dmitrijs2005/foodgram/internal/server/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

const maxBodyBytes = 1 << 20

var (
	validate      = newValidator()
	usernameRegex = regexp.MustCompile(`^[\w.@+-]+$`)
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRegex.MatchString(fl.Field().String())
	})
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// writeError maps service errors onto status codes. Anything unrecognised is
// logged and reported as a bare 500.
func (s *HTTPServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		writeDetail(w, http.StatusNotFound, "not found")
	case errors.Is(err, common.ErrorForbidden):
		writeDetail(w, http.StatusForbidden, "you do not have permission to perform this action")
	case errors.Is(err, common.ErrorUnauthorized):
		writeDetail(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, common.ErrDuplicateRelation),
		errors.Is(err, common.ErrRelationNotFound),
		errors.Is(err, common.ErrSelfReference),
		errors.Is(err, common.ErrInvalidComposition),
		errors.Is(err, common.ErrInvalidCookingTime),
		errors.Is(err, common.ErrorAlreadyExists),
		errors.Is(err, common.ErrorValidation):
		writeDetail(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeDetail(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON reads a JSON body into dst and validates it.
func decodeJSON(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: malformed JSON body", common.ErrorValidation)
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: field %q fails %q", common.ErrorValidation, fe.Field(), fe.Tag())
		}
		return fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	return nil
}

// pathID parses a numeric URL parameter. Malformed ids cannot name anything,
// so they are reported as not found.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, common.ErrorNotFound
	}
	return id, nil
}

func queryInt(q url.Values, name string, def int) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", common.ErrorValidation, name)
	}
	return n, nil
}

// queryFlag reads a 0/1 filter such as is_favorited.
func queryFlag(q url.Values, name string) bool {
	v := q.Get(name)
	return v == "1" || strings.EqualFold(v, "true")
}

// pageRequest is a page number pagination request: ?page=N&limit=M.
type pageRequest struct {
	number int
	size   int
}

func (s *HTTPServer) pageFrom(r *http.Request) (pageRequest, error) {
	q := r.URL.Query()
	number, err := queryInt(q, "page", 1)
	if err != nil {
		return pageRequest{}, err
	}
	size, err := queryInt(q, "limit", s.defaultPageSize)
	if err != nil {
		return pageRequest{}, err
	}
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = s.defaultPageSize
	}
	size = min(size, s.maxPageSize)
	// offsets are kept within a Postgres INTEGER
	if number-1 > math.MaxInt32/size {
		return pageRequest{}, fmt.Errorf("%w: page is out of range", common.ErrorValidation)
	}
	return pageRequest{number: number, size: size}, nil
}

func (p pageRequest) window() models.Page {
	return models.Page{Limit: p.size, Offset: (p.number - 1) * p.size}
}

type paginated struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  any     `json:"results"`
}

// paginate wraps results with absolute links to the neighbouring pages.
func (s *HTTPServer) paginate(r *http.Request, p pageRequest, total int64, results any) paginated {
	out := paginated{Count: total, Results: results}

	link := func(number int) *string {
		q := r.URL.Query()
		q.Set("page", strconv.Itoa(number))
		u := strings.TrimRight(s.baseURL, "/") + r.URL.Path + "?" + q.Encode()
		return &u
	}

	if int64(p.number*p.size) < total {
		out.Next = link(p.number + 1)
	}
	if p.number > 1 {
		out.Previous = link(p.number - 1)
	}
	return out
}
