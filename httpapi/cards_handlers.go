package httpapi

import (
	"net/http"

	"github.com/librarium/library-service-go/library"
)

func (s *Server) handleRegisterCard(w http.ResponseWriter, r *http.Request, _ string) {
	var dto cardDTO
	if decodeErr := json.NewDecoder(r.Body).Decode(&dto); decodeErr != nil {
		s.writeError(w, library.ErrInvalidArgument)
		return
	}

	card, err := dto.toCard()
	if err != nil {
		s.writeError(w, err)
		return
	}

	if registerErr := s.service.RegisterCard(r.Context(), &card); registerErr != nil {
		s.writeError(w, registerErr)
		return
	}

	s.writeData(w, cardToDTO(card))
}

func (s *Server) handleModifyCard(w http.ResponseWriter, r *http.Request, rawID string) {
	cardID, err := parseID(rawID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var dto cardDTO
	if decodeErr := json.NewDecoder(r.Body).Decode(&dto); decodeErr != nil {
		s.writeError(w, library.ErrInvalidArgument)
		return
	}

	card, convertErr := dto.toCard()
	if convertErr != nil {
		s.writeError(w, convertErr)
		return
	}

	card.CardID = cardID

	if modifyErr := s.service.ModifyCard(r.Context(), card); modifyErr != nil {
		s.writeError(w, modifyErr)
		return
	}

	s.writeSuccess(w)
}

func (s *Server) handleRemoveCard(w http.ResponseWriter, r *http.Request, rawID string) {
	cardID, err := parseID(rawID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if removeErr := s.service.RemoveCard(r.Context(), cardID); removeErr != nil {
		s.writeError(w, removeErr)
		return
	}

	s.writeSuccess(w)
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request, _ string) {
	list, err := s.service.ListCards(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	cards := make([]cardDTO, 0, len(list.Cards))
	for _, card := range list.Cards {
		cards = append(cards, cardToDTO(card))
	}

	s.writeData(w, cardListDTO{Count: list.Count, Cards: cards})
}
