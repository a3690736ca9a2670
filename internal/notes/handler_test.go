package notes_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/JaThHu/Notizen-App/internal/auth"
	"github.com/JaThHu/Notizen-App/internal/comments"
	"github.com/JaThHu/Notizen-App/internal/domain"
	"github.com/JaThHu/Notizen-App/internal/notes"
	"github.com/JaThHu/Notizen-App/internal/router"
)

type storedNote struct {
	title     string
	content   string
	author    primitive.ObjectID
	completed bool
	likes     []primitive.ObjectID
	createdAt time.Time
	updatedAt time.Time
}

// fakeNoteStore is an in-memory notes.Store. Authors are joined from a fixed
// directory, and like mutations follow set semantics.
type fakeNoteStore struct {
	notes   map[primitive.ObjectID]*storedNote
	authors map[primitive.ObjectID]domain.Author
}

func newFakeNoteStore() *fakeNoteStore {
	return &fakeNoteStore{
		notes:   make(map[primitive.ObjectID]*storedNote),
		authors: make(map[primitive.ObjectID]domain.Author),
	}
}

func (f *fakeNoteStore) addAuthor(ident domain.Identity) {
	f.authors[ident.ID] = domain.Author{ID: ident.ID, Name: ident.Name, Email: ident.Email, Image: ident.Image}
}

func (f *fakeNoteStore) toNote(id primitive.ObjectID, s *storedNote) notes.Note {
	likes := make([]primitive.ObjectID, len(s.likes))
	copy(likes, s.likes)
	return notes.Note{
		ID:        id,
		Title:     s.title,
		Content:   s.content,
		Author:    f.authors[s.author],
		Completed: s.completed,
		Likes:     likes,
		CreatedAt: s.createdAt,
		UpdatedAt: s.updatedAt,
	}
}

func (f *fakeNoteStore) Insert(_ context.Context, authorID primitive.ObjectID, title, content string) (notes.Note, error) {
	id := primitive.NewObjectID()
	now := time.Now().UTC()
	f.notes[id] = &storedNote{
		title:     title,
		content:   content,
		author:    authorID,
		likes:     []primitive.ObjectID{},
		createdAt: now,
		updatedAt: now,
	}
	return f.toNote(id, f.notes[id]), nil
}

func (f *fakeNoteStore) FindByID(_ context.Context, id primitive.ObjectID) (notes.Note, error) {
	s, ok := f.notes[id]
	if !ok {
		return notes.Note{}, mongo.ErrNoDocuments
	}
	return f.toNote(id, s), nil
}

func (f *fakeNoteStore) List(_ context.Context) ([]notes.Note, error) {
	out := make([]notes.Note, 0, len(f.notes))
	for id, s := range f.notes {
		out = append(out, f.toNote(id, s))
	}
	return out, nil
}

func (f *fakeNoteStore) FindRef(_ context.Context, id primitive.ObjectID) (notes.Ref, error) {
	s, ok := f.notes[id]
	if !ok {
		return notes.Ref{}, mongo.ErrNoDocuments
	}
	likes := make([]primitive.ObjectID, len(s.likes))
	copy(likes, s.likes)
	return notes.Ref{Author: s.author, Likes: likes}, nil
}

func (f *fakeNoteStore) Exists(_ context.Context, id primitive.ObjectID) (bool, error) {
	_, ok := f.notes[id]
	return ok, nil
}

func (f *fakeNoteStore) Update(_ context.Context, id primitive.ObjectID, patch notes.UpdateNoteRequest) (notes.Note, error) {
	s, ok := f.notes[id]
	if !ok {
		return notes.Note{}, mongo.ErrNoDocuments
	}
	if patch.Title != nil {
		s.title = *patch.Title
	}
	if patch.Content != nil {
		s.content = *patch.Content
	}
	if patch.Completed != nil {
		s.completed = *patch.Completed
	}
	s.updatedAt = time.Now().UTC()
	return f.toNote(id, s), nil
}

func (f *fakeNoteStore) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.notes[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(f.notes, id)
	return nil
}

func (f *fakeNoteStore) AddLike(_ context.Context, noteID, userID primitive.ObjectID) (notes.Note, error) {
	s, ok := f.notes[noteID]
	if !ok {
		return notes.Note{}, mongo.ErrNoDocuments
	}
	found := false
	for _, id := range s.likes {
		if id == userID {
			found = true
		}
	}
	if !found {
		s.likes = append(s.likes, userID)
	}
	return f.toNote(noteID, s), nil
}

func (f *fakeNoteStore) RemoveLike(_ context.Context, noteID, userID primitive.ObjectID) (notes.Note, error) {
	s, ok := f.notes[noteID]
	if !ok {
		return notes.Note{}, mongo.ErrNoDocuments
	}
	kept := s.likes[:0]
	for _, id := range s.likes {
		if id != userID {
			kept = append(kept, id)
		}
	}
	s.likes = kept
	return f.toNote(noteID, s), nil
}

// fakeCommentStore records cascade deletions and serves per-note listings.
type fakeCommentStore struct {
	byNote  map[primitive.ObjectID][]comments.Comment
	swept   []primitive.ObjectID
	sweepFn func() error
}

func newFakeCommentStore() *fakeCommentStore {
	return &fakeCommentStore{byNote: make(map[primitive.ObjectID][]comments.Comment)}
}

func (f *fakeCommentStore) Insert(_ context.Context, noteID, authorID primitive.ObjectID, text string) (comments.Comment, error) {
	c := comments.Comment{
		ID:        primitive.NewObjectID(),
		Text:      text,
		Author:    domain.Author{ID: authorID},
		NoteID:    noteID,
		CreatedAt: time.Now().UTC(),
	}
	f.byNote[noteID] = append(f.byNote[noteID], c)
	return c, nil
}

func (f *fakeCommentStore) FindOwner(_ context.Context, id primitive.ObjectID) (primitive.ObjectID, error) {
	for _, cs := range f.byNote {
		for _, c := range cs {
			if c.ID == id {
				return c.Author.ID, nil
			}
		}
	}
	return primitive.NilObjectID, mongo.ErrNoDocuments
}

func (f *fakeCommentStore) Delete(_ context.Context, id primitive.ObjectID) error {
	for noteID, cs := range f.byNote {
		for i, c := range cs {
			if c.ID == id {
				f.byNote[noteID] = append(cs[:i], cs[i+1:]...)
				return nil
			}
		}
	}
	return mongo.ErrNoDocuments
}

func (f *fakeCommentStore) ListByNote(_ context.Context, noteID primitive.ObjectID) ([]comments.Comment, error) {
	return f.byNote[noteID], nil
}

func (f *fakeCommentStore) DeleteByNote(_ context.Context, noteID primitive.ObjectID) (int64, error) {
	if f.sweepFn != nil {
		if err := f.sweepFn(); err != nil {
			return 0, err
		}
	}
	f.swept = append(f.swept, noteID)
	n := int64(len(f.byNote[noteID]))
	delete(f.byNote, noteID)
	return n, nil
}

func newIdentity(name, email string) domain.Identity {
	return domain.Identity{ID: primitive.NewObjectID(), Name: name, Email: email}
}

// newNotesApp wires the handler behind a stub auth middleware carrying ident.
func newNotesApp(h *notes.Handler, ident domain.Identity) *fiber.App {
	app := router.NewApp("*")
	mw := auth.WithIdentity(ident)
	app.Get("/api/notes", mw, h.List)
	app.Post("/api/notes", mw, h.Create)
	app.Patch("/api/notes/:id/like", mw, h.ToggleLike)
	app.Get("/api/notes/:id", mw, h.Get)
	app.Patch("/api/notes/:id", mw, h.Update)
	app.Delete("/api/notes/:id", mw, h.Delete)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func decodeNote(t *testing.T, raw []byte) notes.Note {
	t.Helper()
	var n notes.Note
	require.NoError(t, json.Unmarshal(raw, &n))
	return n
}

func TestCreateAndGetNote(t *testing.T) {
	store := newFakeNoteStore()
	ana := newIdentity("Ana", "ana@x.com")
	store.addAuthor(ana)
	h := notes.NewHandler(store, newFakeCommentStore())
	app := newNotesApp(h, ana)

	resp, raw := doJSON(t, app, "POST", "/api/notes", `{"title":"T","content":"C"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	created := decodeNote(t, raw)
	assert.Equal(t, "T", created.Title)
	assert.Equal(t, "C", created.Content)
	assert.Equal(t, ana.ID, created.Author.ID)
	assert.False(t, created.Completed)
	assert.Empty(t, created.Likes)

	resp, raw = doJSON(t, app, "GET", "/api/notes/"+created.ID.Hex(), "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Note     notes.Note         `json:"note"`
		Comments []comments.Comment `json:"comments"`
	}
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.Equal(t, created.ID, payload.Note.ID)
	assert.Equal(t, "T", payload.Note.Title)
	assert.Empty(t, payload.Comments)
}

func TestCreateNoteValidation(t *testing.T) {
	store := newFakeNoteStore()
	ana := newIdentity("Ana", "ana@x.com")
	store.addAuthor(ana)
	app := newNotesApp(notes.NewHandler(store, newFakeCommentStore()), ana)

	for name, body := range map[string]string{
		"missing title":   `{"content":"C"}`,
		"missing content": `{"title":"T"}`,
		"blank title":     `{"title":"   ","content":"C"}`,
	} {
		t.Run(name, func(t *testing.T) {
			resp, _ := doJSON(t, app, "POST", "/api/notes", body)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestGetNoteNotFound(t *testing.T) {
	store := newFakeNoteStore()
	ana := newIdentity("Ana", "ana@x.com")
	store.addAuthor(ana)
	app := newNotesApp(notes.NewHandler(store, newFakeCommentStore()), ana)

	resp, _ := doJSON(t, app, "GET", "/api/notes/"+primitive.NewObjectID().Hex(), "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	// Malformed ids are indistinguishable from missing notes.
	resp, _ = doJSON(t, app, "GET", "/api/notes/not-a-hex-id", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestUpdateNoteOwnership(t *testing.T) {
	store := newFakeNoteStore()
	ana := newIdentity("Ana", "ana@x.com")
	bob := newIdentity("Bob", "bob@x.com")
	store.addAuthor(ana)
	store.addAuthor(bob)
	h := notes.NewHandler(store, newFakeCommentStore())

	anaApp := newNotesApp(h, ana)
	bobApp := newNotesApp(h, bob)

	_, raw := doJSON(t, anaApp, "POST", "/api/notes", `{"title":"T","content":"C"}`)
	note := decodeNote(t, raw)

	// A foreign user may not touch title or content.
	resp, _ := doJSON(t, bobApp, "PATCH", "/api/notes/"+note.ID.Hex(), `{"title":"x"}`)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	resp, _ = doJSON(t, bobApp, "PATCH", "/api/notes/"+note.ID.Hex(), `{"content":"x"}`)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// But anyone may flip completed.
	resp, raw = doJSON(t, bobApp, "PATCH", "/api/notes/"+note.ID.Hex(), `{"completed":true}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, decodeNote(t, raw).Completed)

	// The author updates freely; omitted fields stay untouched.
	resp, raw = doJSON(t, anaApp, "PATCH", "/api/notes/"+note.ID.Hex(), `{"title":"T2"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	updated := decodeNote(t, raw)
	assert.Equal(t, "T2", updated.Title)
	assert.Equal(t, "C", updated.Content)
	assert.True(t, updated.Completed)

	// Setting a field to empty is distinct from omitting it.
	resp, raw = doJSON(t, anaApp, "PATCH", "/api/notes/"+note.ID.Hex(), `{"content":""}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "", decodeNote(t, raw).Content)
}

func TestToggleLikeInvolution(t *testing.T) {
	store := newFakeNoteStore()
	ana := newIdentity("Ana", "ana@x.com")
	store.addAuthor(ana)
	h := notes.NewHandler(store, newFakeCommentStore())
	app := newNotesApp(h, ana)

	_, raw := doJSON(t, app, "POST", "/api/notes", `{"title":"T","content":"C"}`)
	note := decodeNote(t, raw)

	// Self-likes are allowed; first toggle adds the caller.
	resp, raw := doJSON(t, app, "PATCH", "/api/notes/"+note.ID.Hex()+"/like", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, []primitive.ObjectID{ana.ID}, decodeNote(t, raw).Likes)

	// Second toggle returns to the original state.
	resp, raw = doJSON(t, app, "PATCH", "/api/notes/"+note.ID.Hex()+"/like", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, decodeNote(t, raw).Likes)
}

func TestToggleLikeTwoUsers(t *testing.T) {
	store := newFakeNoteStore()
	ana := newIdentity("Ana", "ana@x.com")
	bob := newIdentity("Bob", "bob@x.com")
	store.addAuthor(ana)
	store.addAuthor(bob)
	h := notes.NewHandler(store, newFakeCommentStore())

	_, raw := doJSON(t, newNotesApp(h, ana), "POST", "/api/notes", `{"title":"T","content":"C"}`)
	note := decodeNote(t, raw)

	doJSON(t, newNotesApp(h, ana), "PATCH", "/api/notes/"+note.ID.Hex()+"/like", "")
	_, raw = doJSON(t, newNotesApp(h, bob), "PATCH", "/api/notes/"+note.ID.Hex()+"/like", "")

	likes := decodeNote(t, raw).Likes
	assert.ElementsMatch(t, []primitive.ObjectID{ana.ID, bob.ID}, likes)
}

func TestToggleLikeUnknownNote(t *testing.T) {
	store := newFakeNoteStore()
	ana := newIdentity("Ana", "ana@x.com")
	store.addAuthor(ana)
	app := newNotesApp(notes.NewHandler(store, newFakeCommentStore()), ana)

	resp, _ := doJSON(t, app, "PATCH", "/api/notes/"+primitive.NewObjectID().Hex()+"/like", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestDeleteNoteCascades(t *testing.T) {
	store := newFakeNoteStore()
	commentStore := newFakeCommentStore()
	ana := newIdentity("Ana", "ana@x.com")
	bob := newIdentity("Bob", "bob@x.com")
	store.addAuthor(ana)
	store.addAuthor(bob)
	h := notes.NewHandler(store, commentStore)

	anaApp := newNotesApp(h, ana)
	bobApp := newNotesApp(h, bob)

	_, raw := doJSON(t, anaApp, "POST", "/api/notes", `{"title":"T","content":"C"}`)
	note := decodeNote(t, raw)
	_, err := commentStore.Insert(context.Background(), note.ID, bob.ID, "nice")
	require.NoError(t, err)

	// Only the author may delete.
	resp, _ := doJSON(t, bobApp, "DELETE", "/api/notes/"+note.ID.Hex(), "")
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, _ = doJSON(t, anaApp, "DELETE", "/api/notes/"+note.ID.Hex(), "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, []primitive.ObjectID{note.ID}, commentStore.swept)
	assert.Empty(t, commentStore.byNote[note.ID])

	// A second delete of the same id fails cleanly.
	resp, _ = doJSON(t, anaApp, "DELETE", "/api/notes/"+note.ID.Hex(), "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, anaApp, "GET", "/api/notes/"+note.ID.Hex(), "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestDeleteNoteSweepFailureSurfaces(t *testing.T) {
	store := newFakeNoteStore()
	commentStore := newFakeCommentStore()
	commentStore.sweepFn = func() error { return context.DeadlineExceeded }
	ana := newIdentity("Ana", "ana@x.com")
	store.addAuthor(ana)
	app := newNotesApp(notes.NewHandler(store, commentStore), ana)

	_, raw := doJSON(t, app, "POST", "/api/notes", `{"title":"T","content":"C"}`)
	note := decodeNote(t, raw)

	resp, _ := doJSON(t, app, "DELETE", "/api/notes/"+note.ID.Hex(), "")
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	// The note itself is gone; the failure is surfaced, not rolled back.
	resp, _ = doJSON(t, app, "GET", "/api/notes/"+note.ID.Hex(), "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestListNotes(t *testing.T) {
	store := newFakeNoteStore()
	ana := newIdentity("Ana", "ana@x.com")
	store.addAuthor(ana)
	app := newNotesApp(notes.NewHandler(store, newFakeCommentStore()), ana)

	doJSON(t, app, "POST", "/api/notes", `{"title":"A","content":"1"}`)
	doJSON(t, app, "POST", "/api/notes", `{"title":"B","content":"2"}`)

	resp, raw := doJSON(t, app, "GET", "/api/notes", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var listed []notes.Note
	require.NoError(t, json.Unmarshal(raw, &listed))
	require.Len(t, listed, 2)
	for _, n := range listed {
		assert.Equal(t, "Ana", n.Author.Name, "notes are joined with author display fields")
	}
}
