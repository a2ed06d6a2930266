package session

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/starford/vocab/internal/apperr"
	"github.com/starford/vocab/internal/checksum"
	"github.com/starford/vocab/internal/index"
	"github.com/starford/vocab/internal/metrics"
	"github.com/starford/vocab/internal/testutil"
)

type recorder struct {
	mu    sync.Mutex
	kinds []string
}

func (r *recorder) record(kind string, _ map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds = append(r.kinds, kind)
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.kinds)
}

func setup(t *testing.T, opts ...Option) (*Service, string, *index.DB) {
	t.Helper()
	dir, store := testutil.TestVault(t)
	db := testutil.TestDB(t)
	opts = append([]Option{WithLogger(testutil.DiscardLogger())}, opts...)
	return NewService(store, db, opts...), dir, db
}

func loaded(t *testing.T, opts ...Option) (*Service, string, *index.DB) {
	t.Helper()
	svc, dir, db := setup(t, opts...)
	testutil.WriteFile(t, dir, "sample.txt", testutil.Sample)
	if _, err := svc.Load(context.Background(), "sample.txt"); err != nil {
		t.Fatal(err)
	}
	return svc, dir, db
}

func names(svc *Service) []string {
	var out []string
	for _, ts := range svc.ListTopics(context.Background()) {
		out = append(out, ts.Name)
	}
	return out
}

func TestLoad_ReplacesList(t *testing.T) {
	svc, _, _ := loaded(t)

	topics := svc.ListTopics(context.Background())
	if len(topics) != 2 {
		t.Fatalf("topics = %d, want 2", len(topics))
	}
	if topics[0].Position != 1 || topics[0].Name != "Animals" || topics[0].WordCount != 2 {
		t.Errorf("topic 1 = %+v", topics[0])
	}
	st := svc.Status(context.Background())
	if st.Path != "sample.txt" || st.Words != 4 {
		t.Errorf("status = %+v", st)
	}
}

func TestLoad_MalformedKeepsList(t *testing.T) {
	svc, dir, _ := loaded(t)
	testutil.WriteFile(t, dir, "bad.txt", "orphan\n# Topic\n")

	_, err := svc.Load(context.Background(), "bad.txt")
	if !errors.Is(err, apperr.ErrMalformedInput) {
		t.Fatalf("err = %v, want ErrMalformedInput", err)
	}
	if got := names(svc); !slices.Equal(got, []string{"Animals", "Colors"}) {
		t.Errorf("list changed after failed load: %v", got)
	}
	if svc.Status(context.Background()).Path != "sample.txt" {
		t.Error("path changed after failed load")
	}
}

func TestLoad_Missing(t *testing.T) {
	svc, _, _ := setup(t)
	_, err := svc.Load(context.Background(), "nope.txt")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestLoad_RejectsBadPaths(t *testing.T) {
	svc, _, _ := setup(t)
	for _, p := range []string{"", "../x.txt", "/etc/passwd.txt", "notes.md"} {
		if _, err := svc.Load(context.Background(), p); !errors.Is(err, apperr.ErrInvalidArgument) {
			t.Errorf("Load(%q) err = %v, want ErrInvalidArgument", p, err)
		}
	}
}

func TestInsertTopics(t *testing.T) {
	svc, _, _ := loaded(t)
	ctx := context.Background()

	d, err := svc.InsertTopicBefore(ctx, 1, "Fruit", []string{"Apple"})
	if err != nil {
		t.Fatal(err)
	}
	if d.Position != 1 {
		t.Errorf("before position = %d, want 1", d.Position)
	}
	d, err = svc.InsertTopicAfter(ctx, 3, "Tools", nil)
	if err != nil {
		t.Fatal(err)
	}
	if d.Position != 4 {
		t.Errorf("after position = %d, want 4", d.Position)
	}
	want := []string{"Fruit", "Animals", "Colors", "Tools"}
	if got := names(svc); !slices.Equal(got, want) {
		t.Errorf("names = %v, want %v", got, want)
	}

	if _, err := svc.InsertTopicAfter(ctx, 9, "X", nil); !errors.Is(err, apperr.ErrOutOfRange) {
		t.Errorf("out of range err = %v", err)
	}
	if _, err := svc.InsertTopicBefore(ctx, 1, "  ", nil); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("blank name err = %v", err)
	}
}

func TestInsertIntoEmptyList(t *testing.T) {
	svc, _, _ := setup(t)
	_, err := svc.InsertTopicBefore(context.Background(), 1, "Animals", nil)
	if !errors.Is(err, apperr.ErrOutOfRange) {
		t.Fatalf("err = %v, want ErrOutOfRange", err)
	}
}

func TestRemoveTopic(t *testing.T) {
	svc, _, _ := loaded(t)
	d, err := svc.RemoveTopic(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if d.Name != "Animals" || !slices.Equal(d.Words, []string{"Cat", "Dog"}) {
		t.Errorf("removed = %+v", d)
	}
	if got := names(svc); !slices.Equal(got, []string{"Colors"}) {
		t.Errorf("names = %v", got)
	}
	if _, err := svc.RemoveTopic(context.Background(), 0); !errors.Is(err, apperr.ErrOutOfRange) {
		t.Errorf("err = %v, want ErrOutOfRange", err)
	}
}

func TestWordOperations(t *testing.T) {
	svc, _, _ := loaded(t)
	ctx := context.Background()

	if err := svc.AddWord(ctx, 1, "Horse"); err != nil {
		t.Fatal(err)
	}
	if err := svc.AddWord(ctx, 1, "cat"); !errors.Is(err, apperr.ErrDuplicateWord) {
		t.Errorf("dup err = %v", err)
	}
	if err := svc.ChangeWord(ctx, 1, "DOG", "Wolf"); err != nil {
		t.Fatal(err)
	}
	if err := svc.RemoveWord(ctx, 1, "cat"); err != nil {
		t.Fatal(err)
	}
	if err := svc.RemoveWord(ctx, 1, "cat"); !errors.Is(err, apperr.ErrWordNotFound) {
		t.Errorf("missing word err = %v", err)
	}
	if err := svc.AddWord(ctx, 5, "x"); !errors.Is(err, apperr.ErrOutOfRange) {
		t.Errorf("bad position err = %v", err)
	}

	d, err := svc.ListWords(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"Wolf", "Horse"}; !slices.Equal(d.Words, want) {
		t.Errorf("words = %v, want %v", d.Words, want)
	}
}

func TestSearchWord(t *testing.T) {
	svc, _, _ := loaded(t)
	hits, err := svc.SearchWord(context.Background(), "RED")
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].Position != 2 || hits[0].Word != "Red" {
		t.Errorf("hits = %+v", hits)
	}

	hits, err = svc.SearchWord(context.Background(), "zebra")
	if err != nil {
		t.Fatal(err)
	}
	if hits == nil || len(hits) != 0 {
		t.Errorf("hits = %#v, want empty non-nil", hits)
	}

	if _, err := svc.SearchWord(context.Background(), " "); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestWordsStartingWith(t *testing.T) {
	svc, _, _ := loaded(t)
	ctx := context.Background()
	if err := svc.AddWord(ctx, 2, "Brown"); err != nil {
		t.Fatal(err)
	}
	if err := svc.AddWord(ctx, 1, "bat"); err != nil {
		t.Fatal(err)
	}

	got, err := svc.WordsStartingWith(ctx, "B")
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"bat", "blue", "Brown"}; !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	for _, bad := range []string{"", "ab"} {
		if _, err := svc.WordsStartingWith(ctx, bad); !errors.Is(err, apperr.ErrInvalidArgument) {
			t.Errorf("WordsStartingWith(%q) err = %v", bad, err)
		}
	}
}

func TestSave_RoundTrip(t *testing.T) {
	svc, dir, _ := loaded(t)
	ctx := context.Background()

	if err := svc.AddWord(ctx, 2, "Green"); err != nil {
		t.Fatal(err)
	}
	res, err := svc.Save(ctx, "", "")
	if err != nil {
		t.Fatal(err)
	}
	want := "# Animals\nCat\nDog\n# Colors\nRed\nblue\nGreen\n"
	if got := testutil.ReadFile(t, dir, "sample.txt"); got != want {
		t.Errorf("file = %q, want %q", got, want)
	}
	if res.Checksum != checksum.Sum([]byte(want)) {
		t.Error("checksum does not match written content")
	}
}

func TestSave_NeedsPath(t *testing.T) {
	svc, _, _ := setup(t)
	_, err := svc.Save(context.Background(), "", "")
	if !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestSave_IfMatch(t *testing.T) {
	svc, dir, _ := loaded(t)
	ctx := context.Background()
	sum := svc.Status(ctx).Checksum

	if _, err := svc.Save(ctx, "", sum); err != nil {
		t.Fatalf("matching checksum: %v", err)
	}

	testutil.WriteFile(t, dir, "sample.txt", "# Edited\nelsewhere\n")
	_, err := svc.Save(ctx, "", sum)
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	if got := testutil.ReadFile(t, dir, "sample.txt"); got != "# Edited\nelsewhere\n" {
		t.Errorf("conflicting save overwrote file: %q", got)
	}

	if _, err := svc.Save(ctx, "other.txt", "deadbeef"); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("missing file with if-match err = %v", err)
	}
}

func TestSave_IndexesFile(t *testing.T) {
	svc, _, db := loaded(t)
	ctx := context.Background()
	if err := svc.AddWord(ctx, 1, "Ocelot"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Save(ctx, "copy.txt", ""); err != nil {
		t.Fatal(err)
	}

	res, err := svc.SearchVault(ctx, "ocelot", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 1 || res[0].Path != "copy.txt" || res[0].Topic != "Animals" {
		t.Errorf("vault search = %+v", res)
	}
	if sum, _ := db.GetChecksum("copy.txt"); sum != svc.Status(ctx).Checksum {
		t.Errorf("indexed checksum = %q", sum)
	}
}

func TestAutosave(t *testing.T) {
	svc, dir, _ := loaded(t, WithAutosave(true))
	if err := svc.RemoveWord(context.Background(), 1, "Cat"); err != nil {
		t.Fatal(err)
	}
	if got := testutil.ReadFile(t, dir, "sample.txt"); strings.Contains(got, "Cat") {
		t.Errorf("autosave did not persist removal: %q", got)
	}
}

func TestImport(t *testing.T) {
	svc, dir, _ := setup(t)
	ctx := context.Background()

	meta, err := svc.Import(ctx, "lists/new.txt", []byte(testutil.Sample))
	if err != nil {
		t.Fatal(err)
	}
	if meta.Path != "lists/new.txt" {
		t.Errorf("path = %q", meta.Path)
	}
	if got := testutil.ReadFile(t, dir, "lists/new.txt"); got != testutil.Sample {
		t.Errorf("content = %q", got)
	}
	if _, err := svc.Import(ctx, "lists/new.txt", []byte(testutil.Sample)); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("second import err = %v", err)
	}
	if _, err := svc.Import(ctx, "bad.txt", []byte("word\n")); !errors.Is(err, apperr.ErrMalformedInput) {
		t.Errorf("malformed import err = %v", err)
	}

	files, err := svc.Files(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Errorf("files = %+v", files)
	}
}

func TestMoveAndDeleteFile(t *testing.T) {
	svc, _, db := loaded(t)
	ctx := context.Background()

	if err := svc.MoveFile(ctx, "sample.txt", "archive/sample.txt"); err != nil {
		t.Fatal(err)
	}
	if got := svc.Status(ctx).Path; got != "archive/sample.txt" {
		t.Errorf("working path = %q", got)
	}
	if sum, _ := db.GetChecksum("sample.txt"); sum != "" {
		t.Error("old path still indexed")
	}
	if sum, _ := db.GetChecksum("archive/sample.txt"); sum == "" {
		t.Error("new path not indexed")
	}

	if _, err := svc.Import(ctx, "other.txt", []byte("# X\n")); err != nil {
		t.Fatal(err)
	}
	if err := svc.MoveFile(ctx, "other.txt", "archive/sample.txt"); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("move onto existing err = %v", err)
	}
	if err := svc.MoveFile(ctx, "ghost.txt", "x.txt"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("move missing err = %v", err)
	}

	if err := svc.DeleteFile(ctx, "archive/sample.txt"); err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteFile(ctx, "archive/sample.txt"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}
	if svc.Status(ctx).Path != "" {
		t.Error("working path kept after delete")
	}
}

func TestChangeNotifications(t *testing.T) {
	rec := &recorder{}
	m := metrics.New()
	svc, _, _ := loaded(t, WithOnChange(rec.record), WithMetrics(m))
	ctx := context.Background()

	_, _ = svc.InsertTopicAfter(ctx, 2, "Fruit", nil)
	_ = svc.AddWord(ctx, 3, "Pear")
	_ = svc.AddWord(ctx, 3, "pear") // duplicate: no event
	_ = svc.ChangeWord(ctx, 3, "Pear", "Plum")
	_ = svc.RemoveWord(ctx, 3, "Plum")
	_, _ = svc.RemoveTopic(ctx, 3)
	_, _ = svc.Save(ctx, "", "")

	want := []string{ChangeLoaded, ChangeTopicInserted, ChangeWordAdded, ChangeWordChanged,
		ChangeWordRemoved, ChangeTopicRemoved, ChangeSaved}
	if got := rec.all(); !slices.Equal(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestConcurrentMutations(t *testing.T) {
	svc, _, _ := loaded(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = svc.AddWord(ctx, 1, "w"+strings.Repeat("x", i))
			_ = svc.ListTopics(ctx)
		}()
	}
	wg.Wait()

	d, err := svc.ListWords(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Words) != 22 {
		t.Errorf("words = %d, want 22", len(d.Words))
	}
}

func TestSave_WriteFailureIsMalformedInput(t *testing.T) {
	svc, dir, _ := loaded(t)
	ctx := context.Background()
	if err := os.Mkdir(filepath.Join(dir, "blocked.txt"), 0o755); err != nil {
		t.Fatal(err)
	}

	_, err := svc.Save(ctx, "blocked.txt", "")
	if !errors.Is(err, apperr.ErrMalformedInput) {
		t.Fatalf("save err = %v, want ErrMalformedInput", err)
	}
	if !strings.Contains(err.Error(), "blocked.txt") {
		t.Errorf("cause lost: %v", err)
	}
	if got := svc.Status(ctx).Path; got != "sample.txt" {
		t.Errorf("working path = %q after failed save", got)
	}

	// With If-Match the unreadable target fails before anything is written.
	if _, err := svc.Save(ctx, "blocked.txt", "abc"); !errors.Is(err, apperr.ErrMalformedInput) {
		t.Errorf("if-match save err = %v, want ErrMalformedInput", err)
	}
}

func TestLoad_KeepsIndentedMarkerWords(t *testing.T) {
	svc, dir, _ := setup(t)
	ctx := context.Background()
	testutil.WriteFile(t, dir, "tags.txt", "# Tags\n  #go\nplain\n")

	if _, err := svc.Load(ctx, "tags.txt"); err != nil {
		t.Fatalf("load: %v", err)
	}
	topic, err := svc.ListWords(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(topic.Words, []string{"#go", "plain"}) {
		t.Errorf("words = %v", topic.Words)
	}
	if err := svc.AddWord(ctx, 1, "#rust"); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("add marker word err = %v", err)
	}

	if _, err := svc.Save(ctx, "", ""); err != nil {
		t.Fatal(err)
	}
	if got := testutil.ReadFile(t, dir, "tags.txt"); got != "# Tags\n #go\nplain\n" {
		t.Errorf("saved = %q", got)
	}
	if _, err := svc.Load(ctx, "tags.txt"); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := svc.Status(ctx); got.Topics != 1 || got.Words != 2 {
		t.Errorf("status after reload = %+v", got)
	}
}

// failingDelete is an index whose DeleteFile always fails.
type failingDelete struct {
	*index.DB
}

func (failingDelete) DeleteFile(string) error { return errors.New("index locked") }

func TestMoveFile_LogsIndexDeleteFailure(t *testing.T) {
	dir, store := testutil.TestVault(t)
	testutil.WriteFile(t, dir, "a.txt", "# A\nx\n")
	var logs bytes.Buffer
	svc := NewService(store, failingDelete{testutil.TestDB(t)},
		WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	if err := svc.MoveFile(context.Background(), "a.txt", "b.txt"); err != nil {
		t.Fatalf("move: %v", err)
	}
	if out := logs.String(); !strings.Contains(out, "move: index delete failed") || !strings.Contains(out, "index locked") {
		t.Errorf("logs = %q", out)
	}
}
