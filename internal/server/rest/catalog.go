package rest

import (
	"net/http"
)

func (s *HTTPServer) listTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.svc.Catalog.Tags(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]tagResponse, 0, len(tags))
	for _, t := range tags {
		out = append(out, presentTag(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *HTTPServer) getTag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	t, err := s.svc.Catalog.Tag(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, presentTag(t))
}

// listIngredients filters by ?name= prefix, case-insensitive.
func (s *HTTPServer) listIngredients(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Catalog.Ingredients(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]ingredientResponse, 0, len(list))
	for _, i := range list {
		out = append(out, ingredientResponse{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *HTTPServer) getIngredient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	i, err := s.svc.Catalog.Ingredient(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ingredientResponse{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit})
}
