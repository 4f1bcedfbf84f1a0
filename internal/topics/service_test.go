package topics

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/starford/topicscout/internal/apperr"
	"github.com/starford/topicscout/internal/cluster"
	"github.com/starford/topicscout/internal/index"
	"github.com/starford/topicscout/internal/metrics"
	"github.com/starford/topicscout/internal/models"
	"github.com/starford/topicscout/internal/notify"
	"github.com/starford/topicscout/internal/report"
	"github.com/starford/topicscout/internal/testutil"
	vaultpkg "github.com/starford/topicscout/internal/vault"
)

type staticSource []models.Note

func (s staticSource) Notes(context.Context) ([]models.Note, error) {
	out := make([]models.Note, len(s))
	copy(out, s)
	return out, nil
}

type failingSource struct{}

func (failingSource) Notes(context.Context) ([]models.Note, error) {
	return nil, errors.New("vault gone")
}

type fakeSummarizer struct {
	text  string
	err   error
	calls int
	seen  []cluster.TopicCluster
}

func (f *fakeSummarizer) Summarize(_ context.Context, cs []cluster.TopicCluster) (string, error) {
	f.calls++
	f.seen = cs
	return f.text, f.err
}

type fakeSink struct {
	msgs []string
	err  error
}

func (f *fakeSink) Send(_ context.Context, msg string) error {
	f.msgs = append(f.msgs, msg)
	return f.err
}

// vault: "go" seeds 3 notes with 900 words; "misc" has 2 notes and 300 words.
func vault() staticSource {
	return staticSource{
		testutil.Note("go1.md", 300, []string{"go"}),
		testutil.Note("go2.md", 300, []string{"go"}),
		testutil.Note("go3.md", 300, []string{"go"}),
		testutil.Note("m1.md", 150, []string{"misc"}),
		testutil.Note("m2.md", 150, []string{"misc"}),
	}
}

func intp(v int) *int { return &v }

func newService(src NoteSource, opts ...Option) *Service {
	opts = append([]Option{
		WithClock(func() time.Time { return testutil.Now }),
		WithLogger(testutil.Logger()),
	}, opts...)
	return NewService(src, opts...)
}

func TestClusters_DefaultsAndOverrides(t *testing.T) {
	svc := newService(vault())

	got, err := svc.Clusters(context.Background(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Name != "go" {
		t.Fatalf("default thresholds: %+v", got)
	}

	got, _ = svc.Clusters(context.Background(), intp(2), intp(100))
	if len(got) != 2 {
		t.Errorf("relaxed thresholds: got %d clusters, want 2", len(got))
	}

	if _, err := svc.Clusters(context.Background(), intp(-1), nil); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("negative threshold err = %v", err)
	}
}

func TestClusters_ConfiguredDefaults(t *testing.T) {
	svc := newService(vault(), WithDefaults(2, 200))
	if n, w := svc.Defaults(); n != 2 || w != 200 {
		t.Fatalf("defaults = %d/%d", n, w)
	}
	got, _ := svc.Clusters(context.Background(), nil, nil)
	if len(got) != 2 {
		t.Errorf("got %d clusters, want 2", len(got))
	}
}

func TestClusters_ZeroWordsDisablesWordLimit(t *testing.T) {
	svc := newService(vault())

	got, err := svc.Clusters(context.Background(), intp(2), intp(0))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("got %d clusters, want go and misc", len(got))
	}

	// A configured zero is honoured too.
	svc = newService(vault(), WithDefaults(2, 0))
	if n, w := svc.Defaults(); n != 2 || w != 0 {
		t.Fatalf("defaults = %d/%d, want 2/0", n, w)
	}
	got, _ = svc.Clusters(context.Background(), nil, nil)
	if len(got) != 2 {
		t.Errorf("configured zero: got %d clusters, want 2", len(got))
	}
}

func TestThresholds(t *testing.T) {
	svc := newService(vault())
	n, w, err := svc.Thresholds(nil, intp(0))
	if err != nil || n != DefaultMinNotes || w != 0 {
		t.Errorf("Thresholds(nil, 0) = %d, %d, %v", n, w, err)
	}
	if _, _, err := svc.Thresholds(nil, intp(-3)); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("negative words err = %v", err)
	}
}

func TestCluster_LookupIgnoresFilter(t *testing.T) {
	svc := newService(vault())

	c, err := svc.Cluster(context.Background(), " MISC ")
	if err != nil {
		t.Fatalf("Cluster: %v", err)
	}
	if len(c.Notes) != 2 || c.TotalWords != 300 {
		t.Errorf("misc = %+v", c)
	}
	if !c.RecentActivity {
		t.Error("notes modified at the frozen clock should be recent")
	}

	if _, err := svc.Cluster(context.Background(), "nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestAnalyze_DryRunUsesOutline(t *testing.T) {
	sum := &fakeSummarizer{text: "unused"}
	sink := &fakeSink{}
	svc := newService(vault(), WithSummarizer(sum), WithSink(sink))

	a, err := svc.Analyze(context.Background(), AnalyzeRequest{DryRun: true, Notify: true})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if sum.calls != 0 {
		t.Error("dry run must not call the model")
	}
	if len(sink.msgs) != 0 || a.Notified {
		t.Error("dry run must not notify")
	}
	if !strings.HasPrefix(a.Report, "go: 3 notes, 900 words\n") {
		t.Errorf("report = %q", a.Report)
	}
	if a.ID == "" || a.NoteCount != 5 || !a.GeneratedAt.Equal(testutil.Now) || !a.DryRun {
		t.Errorf("analysis = %+v", a)
	}
}

func TestAnalyze_FullRunNotifies(t *testing.T) {
	sum := &fakeSummarizer{text: "Write about Go."}
	sink := &fakeSink{}
	svc := newService(vault(), WithSummarizer(sum), WithSink(sink), WithMetrics(metrics.New()))

	a, err := svc.Analyze(context.Background(), AnalyzeRequest{Notify: true})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if a.Report != "Write about Go." || len(sum.seen) != 1 {
		t.Errorf("report = %q, summarized %d clusters", a.Report, len(sum.seen))
	}
	if len(sink.msgs) != 1 || sink.msgs[0] != "Write about Go." || !a.Notified {
		t.Errorf("sink got %v", sink.msgs)
	}
}

func TestAnalyze_NotifyFailureIsNotFatal(t *testing.T) {
	svc := newService(vault(),
		WithSummarizer(&fakeSummarizer{text: "ok"}),
		WithSink(&fakeSink{err: errors.New("webhook down")}))

	a, err := svc.Analyze(context.Background(), AnalyzeRequest{Notify: true})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if a.Notified {
		t.Error("Notified should be false after a failed delivery")
	}
}

func TestAnalyze_NotifiedReflectsFanoutDelivery(t *testing.T) {
	cases := map[string]*notify.Fanout{
		"no sinks":      notify.NewFanout(testutil.Logger(), nil),
		"all sinks bad": notify.NewFanout(testutil.Logger(), nil, &fakeSink{err: errors.New("down")}, &fakeSink{err: errors.New("down")}),
	}
	for name, fanout := range cases {
		t.Run(name, func(t *testing.T) {
			svc := newService(vault(), WithSummarizer(&fakeSummarizer{text: "ok"}), WithSink(fanout))
			a, err := svc.Analyze(context.Background(), AnalyzeRequest{Notify: true})
			if err != nil {
				t.Fatalf("Analyze: %v", err)
			}
			if a.Notified {
				t.Error("Notified should be false when nothing was delivered")
			}
		})
	}

	good := &fakeSink{}
	fanout := notify.NewFanout(testutil.Logger(), nil, &fakeSink{err: errors.New("down")}, good)
	a, err := newService(vault(), WithSummarizer(&fakeSummarizer{text: "ok"}), WithSink(fanout)).
		Analyze(context.Background(), AnalyzeRequest{Notify: true})
	if err != nil {
		t.Fatal(err)
	}
	if !a.Notified || len(good.msgs) != 1 {
		t.Errorf("Notified = %v, deliveries = %d; want true, 1", a.Notified, len(good.msgs))
	}
}

func TestAnalyze_NoClustersSkipsNotification(t *testing.T) {
	sink := &fakeSink{}
	svc := newService(vault(), WithSummarizer(&fakeSummarizer{text: "nothing"}), WithSink(sink))

	a, err := svc.Analyze(context.Background(), AnalyzeRequest{MinNotes: intp(10), Notify: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Clusters) != 0 || a.Clusters == nil {
		t.Errorf("clusters = %#v, want empty non-nil", a.Clusters)
	}
	if len(sink.msgs) != 0 {
		t.Error("empty result should not be announced")
	}
}

func TestAnalyze_Errors(t *testing.T) {
	if _, err := newService(vault()).Analyze(context.Background(), AnalyzeRequest{}); !errors.Is(err, apperr.ErrNotConfigured) {
		t.Errorf("missing summarizer err = %v", err)
	}

	boom := errors.New("rate limited")
	svc := newService(vault(), WithSummarizer(&fakeSummarizer{err: boom}))
	if _, err := svc.Analyze(context.Background(), AnalyzeRequest{}); !errors.Is(err, boom) {
		t.Errorf("summarizer err = %v", err)
	}

	if _, err := newService(failingSource{}).Analyze(context.Background(), AnalyzeRequest{DryRun: true}); err == nil {
		t.Error("expected source error")
	}
}

type fakeSearcher struct{ query string }

func (f *fakeSearcher) Search(q string, _ int) ([]index.SearchResult, error) {
	f.query = q
	return []index.SearchResult{{Path: "go1.md"}}, nil
}

func TestSearch(t *testing.T) {
	if _, err := newService(vault()).Search(context.Background(), "go", 5); !errors.Is(err, apperr.ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}

	fs := &fakeSearcher{}
	svc := newService(vault(), WithSearcher(fs))
	if _, err := svc.Search(context.Background(), "  ", 5); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("blank query err = %v", err)
	}
	res, err := svc.Search(context.Background(), " go ", 5)
	if err != nil || len(res) != 1 || fs.query != "go" {
		t.Errorf("res = %v, err = %v, query = %q", res, err, fs.query)
	}
}

func TestService_LiveIndexSource(t *testing.T) {
	db := testutil.TestDB(t)
	for _, n := range vault() {
		if err := db.UpsertNote(n, n.Path); err != nil {
			t.Fatal(err)
		}
	}
	svc := newService(index.NewSource(db, nil), WithSearcher(db))

	got, err := svc.Clusters(context.Background(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Name != "go" || got[0].TotalWords != 900 {
		t.Errorf("clusters = %+v", got)
	}
}

func TestAnalyze_EmptyResultNeedsNoSummarizer(t *testing.T) {
	a, err := newService(vault()).Analyze(context.Background(), AnalyzeRequest{MinWords: intp(10_000)})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if a.Report != report.NoClustersMessage {
		t.Errorf("report = %q", a.Report)
	}
}

func TestClusters_SameVaultSameClustersFromEitherSource(t *testing.T) {
	root, store := testutil.TestVault(t)
	// rust and systems tie at two notes; the first tag seen wins, so both
	// sources must hand notes over in the same order.
	testutil.WriteNote(t, root, "a/one.md", "---\ntags: [rust]\n---\nborrow checker")
	testutil.WriteNote(t, root, "a/two.md", "---\ntags: [rust, systems]\n---\nzero cost")
	testutil.WriteNote(t, root, "a-b/three.md", "---\ntags: [systems]\n---\nkernels")

	db := testutil.TestDB(t)
	if err := index.Sync(db, store, testutil.Logger()); err != nil {
		t.Fatal(err)
	}

	names := func(src NoteSource) []string {
		t.Helper()
		got, err := newService(src).Clusters(context.Background(), intp(0), intp(0))
		if err != nil {
			t.Fatal(err)
		}
		var out []string
		for _, c := range got {
			out = append(out, c.Name)
		}
		return out
	}
	scan := names(vaultpkg.NewSource(store, nil, testutil.Logger()))
	live := names(index.NewSource(db, nil))
	if strings.Join(scan, ",") != strings.Join(live, ",") || len(scan) != 1 {
		t.Errorf("vault scan = %v, live index = %v; want one identical cluster", scan, live)
	}
}
