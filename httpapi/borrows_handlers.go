package httpapi

import (
	"net/http"

	"github.com/librarium/library-service-go/library"
)

func (s *Server) handleBorrowBook(w http.ResponseWriter, r *http.Request, _ string) {
	var dto borrowDTO
	if decodeErr := json.NewDecoder(r.Body).Decode(&dto); decodeErr != nil {
		s.writeError(w, library.ErrInvalidArgument)
		return
	}

	if borrowErr := s.service.BorrowBook(r.Context(), dto.toBorrow()); borrowErr != nil {
		s.writeError(w, borrowErr)
		return
	}

	s.writeSuccess(w)
}

func (s *Server) handleReturnBook(w http.ResponseWriter, r *http.Request, _ string) {
	var dto borrowDTO
	if decodeErr := json.NewDecoder(r.Body).Decode(&dto); decodeErr != nil {
		s.writeError(w, library.ErrInvalidArgument)
		return
	}

	if returnErr := s.service.ReturnBook(r.Context(), dto.toBorrow()); returnErr != nil {
		s.writeError(w, returnErr)
		return
	}

	s.writeSuccess(w)
}

// handleBorrowHistory serves the full borrow history of one card, newest
// borrow first.
func (s *Server) handleBorrowHistory(w http.ResponseWriter, r *http.Request, rawID string) {
	cardID, err := parseID(rawID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	histories, historyErr := s.service.BorrowHistory(r.Context(), cardID)
	if historyErr != nil {
		s.writeError(w, historyErr)
		return
	}

	s.writeData(w, historyToDTO(histories))
}
