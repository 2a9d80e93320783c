package httpapi

import (
	"errors"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/librarium/library-service-go/library"
)

var json = jsoniter.ConfigFastest

type responseEnvelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

type bookDTO struct {
	BookID      int64   `json:"bookId"`
	Category    string  `json:"category"`
	Title       string  `json:"title"`
	Press       string  `json:"press"`
	PublishYear int     `json:"publishYear"`
	Author      string  `json:"author"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
}

type cardDTO struct {
	CardID     int64  `json:"cardId"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Type       string `json:"type"`
}

type borrowDTO struct {
	CardID     int64 `json:"cardId"`
	BookID     int64 `json:"bookId"`
	BorrowTime int64 `json:"borrowTime"`
	ReturnTime int64 `json:"returnTime"`
}

type cardListDTO struct {
	Count int       `json:"count"`
	Cards []cardDTO `json:"cards"`
}

type bookResultsDTO struct {
	Count int       `json:"count"`
	Books []bookDTO `json:"books"`
}

type historyItemDTO struct {
	CardID     int64   `json:"cardId"`
	BookID     int64   `json:"bookId"`
	BorrowTime int64   `json:"borrowTime"`
	ReturnTime int64   `json:"returnTime"`
	Book       bookDTO `json:"book"`
}

type historyDTO struct {
	Count int              `json:"count"`
	Items []historyItemDTO `json:"items"`
}

func bookToDTO(b library.Book) bookDTO {
	return bookDTO{
		BookID:      b.BookID,
		Category:    b.Category,
		Title:       b.Title,
		Press:       b.Press,
		PublishYear: b.PublishYear,
		Author:      b.Author,
		Price:       b.Price,
		Stock:       b.Stock,
	}
}

func (d bookDTO) toBook() library.Book {
	return library.Book{
		BookID:      d.BookID,
		Category:    d.Category,
		Title:       d.Title,
		Press:       d.Press,
		PublishYear: d.PublishYear,
		Author:      d.Author,
		Price:       d.Price,
		Stock:       d.Stock,
	}
}

func cardToDTO(c library.Card) cardDTO {
	return cardDTO{
		CardID:     c.CardID,
		Name:       c.Name,
		Department: c.Department,
		Type:       string(c.Type),
	}
}

func (d cardDTO) toCard() (library.Card, error) {
	cardType, err := library.ParseCardType(d.Type)
	if err != nil {
		return library.Card{}, err
	}

	return library.Card{
		CardID:     d.CardID,
		Name:       d.Name,
		Department: d.Department,
		Type:       cardType,
	}, nil
}

func (d borrowDTO) toBorrow() library.Borrow {
	return library.Borrow{
		CardID:     d.CardID,
		BookID:     d.BookID,
		BorrowTime: d.BorrowTime,
		ReturnTime: d.ReturnTime,
	}
}

func historyToDTO(histories library.BorrowHistories) historyDTO {
	items := make([]historyItemDTO, 0, len(histories.Items))

	for _, item := range histories.Items {
		items = append(items, historyItemDTO{
			CardID:     item.Borrow.CardID,
			BookID:     item.Borrow.BookID,
			BorrowTime: item.Borrow.BorrowTime,
			ReturnTime: item.Borrow.ReturnTime,
			Book:       bookToDTO(item.Book),
		})
	}

	return historyDTO{Count: histories.Count, Items: items}
}

// statusForError maps a domain error kind onto an HTTP status code.
func statusForError(err error) int {
	switch {
	case errors.Is(err, library.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, library.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, library.ErrInvalidArgument), errors.Is(err, library.ErrOutOfStock):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeData(w http.ResponseWriter, payload any) {
	s.writeEnvelope(w, http.StatusOK, responseEnvelope{Success: true, Data: payload})
}

func (s *Server) writeSuccess(w http.ResponseWriter) {
	s.writeEnvelope(w, http.StatusOK, responseEnvelope{Success: true})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.writeEnvelope(w, statusForError(err), responseEnvelope{Success: false, Error: err.Error()})
}

func (s *Server) writeEnvelope(w http.ResponseWriter, statusCode int, envelope responseEnvelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if encodeErr := json.NewEncoder(w).Encode(envelope); encodeErr != nil {
		s.logger.Warn("failed to encode response", "error", encodeErr.Error())
	}
}
