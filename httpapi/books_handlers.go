package httpapi

import (
	"bytes"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/librarium/library-service-go/library"
)

// handleStoreBooks accepts either a single book object or an array of books.
// Store-assigned identifiers are echoed back in the response payload.
func (s *Server) handleStoreBooks(w http.ResponseWriter, r *http.Request, _ string) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, library.ErrInvalidArgument)
		return
	}

	if isJSONArray(body) {
		s.storeBookBatch(w, r, body)
		return
	}

	var dto bookDTO
	if unmarshalErr := json.Unmarshal(body, &dto); unmarshalErr != nil {
		s.writeError(w, library.ErrInvalidArgument)
		return
	}

	book := dto.toBook()
	if storeErr := s.service.StoreBook(r.Context(), &book); storeErr != nil {
		s.writeError(w, storeErr)
		return
	}

	s.writeData(w, bookToDTO(book))
}

func (s *Server) storeBookBatch(w http.ResponseWriter, r *http.Request, body []byte) {
	var dtos []bookDTO
	if unmarshalErr := json.Unmarshal(body, &dtos); unmarshalErr != nil {
		s.writeError(w, library.ErrInvalidArgument)
		return
	}

	books := make([]*library.Book, 0, len(dtos))
	for _, dto := range dtos {
		book := dto.toBook()
		books = append(books, &book)
	}

	if storeErr := s.service.StoreBooks(r.Context(), books); storeErr != nil {
		s.writeError(w, storeErr)
		return
	}

	stored := make([]bookDTO, 0, len(books))
	for _, book := range books {
		stored = append(stored, bookToDTO(*book))
	}

	s.writeData(w, stored)
}

func (s *Server) handleModifyBook(w http.ResponseWriter, r *http.Request, rawID string) {
	bookID, err := parseID(rawID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var dto bookDTO
	if decodeErr := json.NewDecoder(r.Body).Decode(&dto); decodeErr != nil {
		s.writeError(w, library.ErrInvalidArgument)
		return
	}

	book := dto.toBook()
	book.BookID = bookID

	if modifyErr := s.service.ModifyBook(r.Context(), book); modifyErr != nil {
		s.writeError(w, modifyErr)
		return
	}

	s.writeSuccess(w)
}

// handleIncBookStock applies a relative stock adjustment, wire shape
// {"delta": n}.
func (s *Server) handleIncBookStock(w http.ResponseWriter, r *http.Request, rawID string) {
	bookID, err := parseID(rawID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var request struct {
		Delta int `json:"delta"`
	}

	if decodeErr := json.NewDecoder(r.Body).Decode(&request); decodeErr != nil {
		s.writeError(w, library.ErrInvalidArgument)
		return
	}

	if incErr := s.service.IncBookStock(r.Context(), bookID, request.Delta); incErr != nil {
		s.writeError(w, incErr)
		return
	}

	s.writeSuccess(w)
}

func (s *Server) handleRemoveBook(w http.ResponseWriter, r *http.Request, rawID string) {
	bookID, err := parseID(rawID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if removeErr := s.service.RemoveBook(r.Context(), bookID); removeErr != nil {
		s.writeError(w, removeErr)
		return
	}

	s.writeSuccess(w)
}

func (s *Server) handleQueryBooks(w http.ResponseWriter, r *http.Request, _ string) {
	conditions, err := queryConditionsFromURL(r.URL.Query())
	if err != nil {
		s.writeError(w, err)
		return
	}

	results, queryErr := s.service.QueryBooks(r.Context(), conditions)
	if queryErr != nil {
		s.writeError(w, queryErr)
		return
	}

	books := make([]bookDTO, 0, len(results.Books))
	for _, book := range results.Books {
		books = append(books, bookToDTO(book))
	}

	s.writeData(w, bookResultsDTO{Count: results.Count, Books: books})
}

func queryConditionsFromURL(values url.Values) (library.BookQueryConditions, error) {
	conditions := library.BookQueryConditions{
		SortBy: library.ParseSortColumn(values.Get("sortBy")),
		Order:  library.ParseSortOrder(values.Get("sortOrder")),
	}

	for name, target := range map[string]**string{
		"category": &conditions.Category,
		"title":    &conditions.Title,
		"press":    &conditions.Press,
		"author":   &conditions.Author,
	} {
		if value := values.Get(name); value != "" {
			*target = library.Str(value)
		}
	}

	var err error

	if conditions.MinPublishYear, err = intParam(values, "minPublishYear"); err != nil {
		return library.BookQueryConditions{}, err
	}

	if conditions.MaxPublishYear, err = intParam(values, "maxPublishYear"); err != nil {
		return library.BookQueryConditions{}, err
	}

	if conditions.MinPrice, err = floatParam(values, "minPrice"); err != nil {
		return library.BookQueryConditions{}, err
	}

	if conditions.MaxPrice, err = floatParam(values, "maxPrice"); err != nil {
		return library.BookQueryConditions{}, err
	}

	return conditions, nil
}

func intParam(values url.Values, name string) (*int, error) {
	raw := values.Get(name)
	if raw == "" {
		return nil, nil
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return nil, library.ErrInvalidQueryParameter
	}

	return library.Int(parsed), nil
}

func floatParam(values url.Values, name string) (*float64, error) {
	raw := values.Get(name)
	if raw == "" {
		return nil, nil
	}

	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, library.ErrInvalidQueryParameter
	}

	return library.Float(parsed), nil
}

func isJSONArray(body []byte) bool {
	trimmed := bytes.TrimLeft(body, " \t\r\n")

	return len(trimmed) > 0 && trimmed[0] == '['
}
