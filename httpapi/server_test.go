package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librarium/library-service-go/library"
)

// stubService answers every operation from canned fields and records the
// arguments it was called with.
type stubService struct {
	err error

	storedBook    *library.Book
	storedBatch   []*library.Book
	modifiedBook  library.Book
	removedBookID int64
	stockBookID   int64
	stockDelta    int
	conditions    library.BookQueryConditions
	queryResults  library.BookQueryResults

	registeredCard *library.Card
	modifiedCard   library.Card
	removedCardID  int64
	cardList       library.CardList

	borrowed      library.Borrow
	returned      library.Borrow
	historyCardID int64
	histories     library.BorrowHistories
}

func (s *stubService) StoreBook(_ context.Context, book *library.Book) error {
	s.storedBook = book
	book.BookID = 42

	return s.err
}

func (s *stubService) StoreBooks(_ context.Context, books []*library.Book) error {
	s.storedBatch = books
	for i, book := range books {
		book.BookID = int64(i + 1)
	}

	return s.err
}

func (s *stubService) IncBookStock(_ context.Context, bookID int64, delta int) error {
	s.stockBookID = bookID
	s.stockDelta = delta

	return s.err
}

func (s *stubService) ModifyBook(_ context.Context, book library.Book) error {
	s.modifiedBook = book
	return s.err
}

func (s *stubService) RemoveBook(_ context.Context, bookID int64) error {
	s.removedBookID = bookID
	return s.err
}

func (s *stubService) QueryBooks(_ context.Context, conditions library.BookQueryConditions) (library.BookQueryResults, error) {
	s.conditions = conditions
	return s.queryResults, s.err
}

func (s *stubService) RegisterCard(_ context.Context, card *library.Card) error {
	s.registeredCard = card
	card.CardID = 11

	return s.err
}

func (s *stubService) ModifyCard(_ context.Context, card library.Card) error {
	s.modifiedCard = card
	return s.err
}

func (s *stubService) RemoveCard(_ context.Context, cardID int64) error {
	s.removedCardID = cardID
	return s.err
}

func (s *stubService) ListCards(_ context.Context) (library.CardList, error) {
	return s.cardList, s.err
}

func (s *stubService) BorrowBook(_ context.Context, borrow library.Borrow) error {
	s.borrowed = borrow
	return s.err
}

func (s *stubService) ReturnBook(_ context.Context, borrow library.Borrow) error {
	s.returned = borrow
	return s.err
}

func (s *stubService) BorrowHistory(_ context.Context, cardID int64) (library.BorrowHistories, error) {
	s.historyCardID = cardID
	return s.histories, s.err
}

func serve(t *testing.T, service *stubService, method, target, body string) (*httptest.ResponseRecorder, responseEnvelope) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}

	request := httptest.NewRequest(method, target, reader)
	recorder := httptest.NewRecorder()

	NewServer(service, nil).ServeHTTP(recorder, request)

	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))

	return recorder, envelope
}

func Test_StoreBook_SingleObject_EchoesAssignedIdentity(t *testing.T) {
	// arrange
	service := &stubService{}
	body := `{"category":"CS","title":"A","press":"P","publishYear":2020,"author":"Alice","price":10.5,"stock":3}`

	// act
	recorder, envelope := serve(t, service, http.MethodPost, "/books", body)

	// assert
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.True(t, envelope.Success)
	require.NotNil(t, service.storedBook)
	assert.Equal(t, "Alice", service.storedBook.Author)

	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(42), data["bookId"])
}

func Test_StoreBooks_ArrayBody_DispatchesToBatch(t *testing.T) {
	// arrange
	service := &stubService{}
	body := `[{"title":"A"},{"title":"B"}]`

	// act
	recorder, envelope := serve(t, service, http.MethodPost, "/books", body)

	// assert
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.True(t, envelope.Success)
	require.Len(t, service.storedBatch, 2)

	data, ok := envelope.Data.([]any)
	require.True(t, ok)
	assert.Len(t, data, 2)
}

func Test_QueryBooks_ParsesFilterAndSortParameters(t *testing.T) {
	// arrange
	service := &stubService{
		queryResults: library.BookQueryResults{
			Count: 1,
			Books: []library.Book{{BookID: 1, Title: "A"}},
		},
	}
	target := "/books?category=CS&title=Con&minPrice=10&maxPrice=99.5&minPublishYear=2000&sortBy=price&sortOrder=desc"

	// act
	recorder, envelope := serve(t, service, http.MethodGet, target, "")

	// assert
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.True(t, envelope.Success)

	require.NotNil(t, service.conditions.Category)
	assert.Equal(t, "CS", *service.conditions.Category)
	require.NotNil(t, service.conditions.MinPrice)
	assert.Equal(t, 10.0, *service.conditions.MinPrice)
	require.NotNil(t, service.conditions.MinPublishYear)
	assert.Equal(t, 2000, *service.conditions.MinPublishYear)
	assert.Nil(t, service.conditions.MaxPublishYear)
	assert.Equal(t, library.SortByPrice, service.conditions.SortBy)
	assert.Equal(t, library.SortDesc, service.conditions.Order)
}

func Test_QueryBooks_When_ANumericParameter_IsMalformed(t *testing.T) {
	// act
	recorder, envelope := serve(t, &stubService{}, http.MethodGet, "/books?minPrice=cheap", "")

	// assert
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.False(t, envelope.Success)
	assert.Contains(t, envelope.Error, "invalid argument")
}

func Test_ModifyBook_TakesIdentity_FromThePath(t *testing.T) {
	// arrange
	service := &stubService{}
	body := `{"bookId":999,"title":"A","price":5}`

	// act
	recorder, envelope := serve(t, service, http.MethodPut, "/books/7", body)

	// assert
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.True(t, envelope.Success)
	assert.Equal(t, int64(7), service.modifiedBook.BookID)
}

func Test_IncBookStock_AppliesDelta_FromTheBody(t *testing.T) {
	// arrange
	service := &stubService{}

	// act
	recorder, envelope := serve(t, service, http.MethodPatch, "/books/7", `{"delta":-2}`)

	// assert
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.True(t, envelope.Success)
	assert.Equal(t, int64(7), service.stockBookID)
	assert.Equal(t, -2, service.stockDelta)
}

func Test_RemoveBook_MapsErrorKinds_ToStatusCodes(t *testing.T) {
	testCases := []struct {
		name           string
		serviceErr     error
		expectedStatus int
	}{
		{name: "not_found", serviceErr: library.ErrBookNotFound, expectedStatus: http.StatusNotFound},
		{name: "conflict", serviceErr: library.ErrBookHasActiveBorrows, expectedStatus: http.StatusConflict},
		{name: "store_failure", serviceErr: library.ErrStoreFailure, expectedStatus: http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			service := &stubService{err: tc.serviceErr}

			// act
			recorder, envelope := serve(t, service, http.MethodDelete, "/books/7", "")

			// assert
			assert.Equal(t, tc.expectedStatus, recorder.Code)
			assert.False(t, envelope.Success)
			assert.NotEmpty(t, envelope.Error)
		})
	}
}

func Test_RegisterCard_ParsesWireCardType(t *testing.T) {
	// arrange
	service := &stubService{}

	// act
	recorder, envelope := serve(t, service, http.MethodPost, "/cards", `{"name":"Alice","department":"CS","type":"Student"}`)

	// assert
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.True(t, envelope.Success)
	require.NotNil(t, service.registeredCard)
	assert.Equal(t, library.CardTypeStudent, service.registeredCard.Type)

	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(11), data["cardId"])
}

func Test_RegisterCard_When_CardType_IsUnknown(t *testing.T) {
	// act
	recorder, envelope := serve(t, &stubService{}, http.MethodPost, "/cards", `{"name":"Alice","type":"X"}`)

	// assert
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.False(t, envelope.Success)
}

func Test_ListCards_ReturnsCountAndCards(t *testing.T) {
	// arrange
	service := &stubService{
		cardList: library.CardList{
			Count: 2,
			Cards: []library.Card{
				{CardID: 1, Name: "Alice", Department: "CS", Type: library.CardTypeStudent},
				{CardID: 2, Name: "Bob", Department: "EE", Type: library.CardTypeTeacher},
			},
		},
	}

	// act
	recorder, envelope := serve(t, service, http.MethodGet, "/cards", "")

	// assert
	assert.Equal(t, http.StatusOK, recorder.Code)

	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(2), data["count"])

	cards, ok := data["cards"].([]any)
	require.True(t, ok)
	require.Len(t, cards, 2)

	first, ok := cards[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "S", first["type"])
}

func Test_BorrowAndReturn_RoundTripTheBorrowRecord(t *testing.T) {
	// arrange
	service := &stubService{}
	borrowBody := `{"cardId":11,"bookId":5,"borrowTime":1700000000000}`
	returnBody := `{"cardId":11,"bookId":5,"borrowTime":1700000000000,"returnTime":1700000001000}`

	// act
	borrowRecorder, borrowEnvelope := serve(t, service, http.MethodPost, "/borrows", borrowBody)
	returnRecorder, returnEnvelope := serve(t, service, http.MethodPut, "/borrows", returnBody)

	// assert
	assert.Equal(t, http.StatusOK, borrowRecorder.Code)
	assert.True(t, borrowEnvelope.Success)
	assert.Equal(t, int64(11), service.borrowed.CardID)
	assert.Equal(t, int64(5), service.borrowed.BookID)

	assert.Equal(t, http.StatusOK, returnRecorder.Code)
	assert.True(t, returnEnvelope.Success)
	assert.Equal(t, int64(1700000001000), service.returned.ReturnTime)
}

func Test_BorrowHistory_ServesTheJoinedHistory(t *testing.T) {
	// arrange
	service := &stubService{
		histories: library.BorrowHistories{
			Count: 1,
			Items: []library.BorrowHistoryItem{
				{
					Borrow: library.Borrow{CardID: 11, BookID: 5, BorrowTime: 1700000000000},
					Book:   library.Book{BookID: 5, Title: "A"},
				},
			},
		},
	}

	// act
	recorder, envelope := serve(t, service, http.MethodGet, "/borrows/11", "")

	// assert
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, int64(11), service.historyCardID)

	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), data["count"])

	items, ok := data["items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)

	item, ok := items[0].(map[string]any)
	require.True(t, ok)

	book, ok := item["book"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "A", book["title"])
}

func Test_Routing_UnknownResource_And_UnsupportedMethod(t *testing.T) {
	// act
	notFoundRecorder, notFoundEnvelope := serve(t, &stubService{}, http.MethodGet, "/loans", "")
	methodRecorder, methodEnvelope := serve(t, &stubService{}, http.MethodDelete, "/borrows/1", "")

	// assert
	assert.Equal(t, http.StatusNotFound, notFoundRecorder.Code)
	assert.False(t, notFoundEnvelope.Success)
	assert.Equal(t, http.StatusMethodNotAllowed, methodRecorder.Code)
	assert.False(t, methodEnvelope.Success)
}

func Test_Routing_NonNumericIdentifier(t *testing.T) {
	// act
	recorder, envelope := serve(t, &stubService{}, http.MethodDelete, "/books/abc", "")

	// assert
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.False(t, envelope.Success)
}

func Test_CORS_PreflightAndHeaders(t *testing.T) {
	// arrange
	request := httptest.NewRequest(http.MethodOptions, "/books", nil)
	recorder := httptest.NewRecorder()

	// act
	NewServer(&stubService{}, nil).ServeHTTP(recorder, request)

	// assert
	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Equal(t, "*", recorder.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, recorder.Header().Get("Access-Control-Allow-Methods"), "PATCH")
	assert.NotEmpty(t, recorder.Header().Get("X-Request-Id"))
}
