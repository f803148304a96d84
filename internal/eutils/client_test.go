package eutils

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/citegraph/gref/internal/ratelimit"
)

const efetchFixture = `<?xml version="1.0" ?>
<PubmedArticleSet>
 <PubmedArticle>
  <MedlineCitation Status="MEDLINE">
   <PMID Version="1">111</PMID>
   <Article>
    <Journal>
     <JournalIssue>
      <PubDate><Year>2019</Year><Month>Mar</Month><Day>04</Day></PubDate>
     </JournalIssue>
     <Title>Journal of Tests</Title>
    </Journal>
    <ArticleTitle>The role of <i>p53</i> in tests.</ArticleTitle>
    <Abstract>
     <AbstractText Label="BACKGROUND">Cells divide.</AbstractText>
     <AbstractText Label="RESULTS">Cells die.</AbstractText>
    </Abstract>
    <AuthorList>
     <Author><LastName>Smith</LastName><ForeName>John</ForeName><Initials>J</Initials>
      <Identifier Source="ORCID">https://orcid.org/0000-0001-2345-6789</Identifier></Author>
     <Author><CollectiveName>Test Consortium</CollectiveName></Author>
    </AuthorList>
   </Article>
  </MedlineCitation>
  <PubmedData>
   <ReferenceList>
    <Reference><ArticleIdList><ArticleId IdType="pubmed">222</ArticleId><ArticleId IdType="doi">10.1/x</ArticleId></ArticleIdList></Reference>
    <Reference><ArticleIdList><ArticleId IdType="pubmed">333</ArticleId></ArticleIdList></Reference>
    <Reference><ArticleIdList><ArticleId IdType="pubmed">222</ArticleId></ArticleIdList></Reference>
   </ReferenceList>
  </PubmedData>
 </PubmedArticle>
</PubmedArticleSet>`

const elinkFixture = `<?xml version="1.0" ?>
<eLinkResult>
 <LinkSet>
  <DbFrom>pubmed</DbFrom>
  <LinkSetDb><DbTo>pubmed</DbTo><LinkName>pubmed_pubmed</LinkName><Link><Id>999</Id></Link></LinkSetDb>
  <LinkSetDb><DbTo>pubmed</DbTo><LinkName>pubmed_pubmed_citedin</LinkName><Link><Id>444</Id></Link><Link><Id>555</Id></Link></LinkSetDb>
  <LinkSetDb><DbTo>pubmed</DbTo><LinkName>pubmed_pubmed_five</LinkName><Link><Id>666</Id></Link></LinkSetDb>
 </LinkSet>
</eLinkResult>`

const esearchFixture = `<?xml version="1.0" ?>
<eSearchResult><Count>2</Count><RetMax>2</RetMax><IdList><Id>111</Id><Id>222</Id></IdList></eSearchResult>`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(ratelimit.NewGate(time.Millisecond), WithBaseURL(srv.URL), WithTimeout(2*time.Second))
}

func TestClient_Search(t *testing.T) {
	var gotTerm, gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		r.ParseForm()
		gotTerm = r.PostForm.Get("term")
		w.Write([]byte(esearchFixture))
	})

	ids, err := c.Search(context.Background(), "cell death")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if gotPath != "/esearch.fcgi" {
		t.Errorf("path = %q, want /esearch.fcgi", gotPath)
	}
	if gotTerm != "cell death" {
		t.Errorf("term = %q, want %q", gotTerm, "cell death")
	}
	if len(ids) != 2 || ids[0] != "111" || ids[1] != "222" {
		t.Errorf("Search() = %v, want [111 222]", ids)
	}
}

func TestClient_FetchMetadata(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if got := r.PostForm.Get("id"); got != "111,999" {
			t.Errorf("id = %q, want 111,999", got)
		}
		w.Write([]byte(efetchFixture))
	})

	docs, err := c.FetchMetadata(context.Background(), []string{"111", "999"})
	if err != nil {
		t.Fatalf("FetchMetadata() error = %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("FetchMetadata() returned %d docs, want 1", len(docs))
	}

	d := docs[0]
	if d.ID != "111" {
		t.Errorf("ID = %q, want 111", d.ID)
	}
	if d.Title != "The role of p53 in tests." {
		t.Errorf("Title = %q", d.Title)
	}
	if d.Journal != "Journal of Tests" {
		t.Errorf("Journal = %q", d.Journal)
	}
	if d.Date != "2019 Mar 04" {
		t.Errorf("Date = %q, want 2019 Mar 04", d.Date)
	}
	if d.Abstract != "Cells divide. Cells die." {
		t.Errorf("Abstract = %q", d.Abstract)
	}
	if len(d.Authors) != 2 {
		t.Fatalf("Authors = %v, want 2", d.Authors)
	}
	if d.Authors[0].Name != "Smith, John J" || d.Authors[0].ORCID != "0000-0001-2345-6789" {
		t.Errorf("Authors[0] = %+v", d.Authors[0])
	}
	if d.Authors[1].Name != "Test Consortium" {
		t.Errorf("Authors[1] = %+v", d.Authors[1])
	}
	if len(d.References) != 2 || d.References[0] != "222" || d.References[1] != "333" {
		t.Errorf("References = %v, want [222 333]", d.References)
	}
	if d.CitedIn != nil || d.Related != nil {
		t.Errorf("link fields should be unset before expansion, got %v %v", d.CitedIn, d.Related)
	}
}

func TestClient_FetchMetadataEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for empty id list")
	})
	docs, err := c.FetchMetadata(context.Background(), nil)
	if err != nil || docs != nil {
		t.Errorf("FetchMetadata(nil) = %v, %v; want nil, nil", docs, err)
	}
}

func TestClient_FetchLinks(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.PostForm.Get("cmd") != "neighbor_score" {
			t.Errorf("cmd = %q", r.PostForm.Get("cmd"))
		}
		w.Write([]byte(elinkFixture))
	})

	links, err := c.FetchLinks(context.Background(), "111")
	if err != nil {
		t.Fatalf("FetchLinks() error = %v", err)
	}
	if strings.Join(links.CitedIn, ",") != "444,555" {
		t.Errorf("CitedIn = %v, want [444 555]", links.CitedIn)
	}
	if strings.Join(links.Related, ",") != "666" {
		t.Errorf("Related = %v, want [666]", links.Related)
	}
}

func TestClient_FetchLinksNoLinkSets(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<eLinkResult><LinkSet><DbFrom>pubmed</DbFrom></LinkSet></eLinkResult>`))
	})

	links, err := c.FetchLinks(context.Background(), "111")
	if err != nil {
		t.Fatalf("FetchLinks() error = %v", err)
	}
	if links.CitedIn == nil || links.Related == nil {
		t.Error("FetchLinks() should return non-nil empty slices")
	}
}

func TestClient_RetriesFailedAttempt(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(esearchFixture))
	})

	ids, err := c.Search(context.Background(), "retry")
	if err != nil {
		t.Fatalf("Search() error = %v, want success on second attempt", err)
	}
	if len(ids) != 2 {
		t.Errorf("Search() = %v", ids)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("server saw %d calls, want 2", got)
	}
}

func TestClient_RetriesEmptyBodyAndRateLimit(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1:
			w.WriteHeader(http.StatusTooManyRequests)
		case 2:
			// 200 with an empty body
		default:
			w.Write([]byte(esearchFixture))
		}
	})

	if _, err := c.Search(context.Background(), "x"); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server saw %d calls, want 3", got)
	}
}

func TestClient_RetriesTruncatedBody(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Write([]byte(efetchFixture[:len(efetchFixture)/2]))
			return
		}
		w.Write([]byte(efetchFixture))
	})

	docs, err := c.FetchMetadata(context.Background(), []string{"111"})
	if err != nil {
		t.Fatalf("FetchMetadata() error = %v", err)
	}
	if len(docs) != 1 || docs[0].ID != "111" {
		t.Errorf("FetchMetadata() = %+v, want document 111", docs)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("server saw %d calls, want 2", got)
	}
}

func TestClient_UndecodableBodyExhaustsAttempts(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte("<eLinkResult><LinkSet>"))
	})

	_, err := c.FetchLinks(context.Background(), "111")
	if !IsTransport(err) || !errors.Is(err, ErrInvalidResponse) {
		t.Fatalf("FetchLinks() error = %v, want transport failure wrapping invalid response", err)
	}
	if got := calls.Load(); got != DefaultAttempts {
		t.Errorf("server saw %d calls, want %d", got, DefaultAttempts)
	}
}

func TestClient_ExhaustedAttempts(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.FetchLinks(context.Background(), "111")
	if !IsTransport(err) {
		t.Fatalf("FetchLinks() error = %v, want transport failure", err)
	}
	if got := calls.Load(); got != DefaultAttempts {
		t.Errorf("server saw %d calls, want %d", got, DefaultAttempts)
	}
}

func TestClient_TimeoutIsRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			time.Sleep(200 * time.Millisecond)
		}
		w.Write([]byte(esearchFixture))
	}))
	defer srv.Close()

	c := NewClient(ratelimit.NewGate(time.Millisecond), WithBaseURL(srv.URL), WithTimeout(50*time.Millisecond))
	if _, err := c.Search(context.Background(), "slow"); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if got := calls.Load(); got < 2 {
		t.Errorf("server saw %d calls, want a retry after timeout", got)
	}
}

func TestClient_CancelledContextNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(esearchFixture))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Search(ctx, "x")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Search() error = %v, want context.Canceled", err)
	}
	if calls.Load() != 0 {
		t.Errorf("server saw %d calls, want 0", calls.Load())
	}
}

func TestClient_SendsCredentials(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.PostForm.Get("api_key") != "secret" || r.PostForm.Get("email") != "me@example.org" || r.PostForm.Get("tool") != DefaultTool {
			t.Errorf("form = %v", r.PostForm)
		}
		w.Write([]byte(esearchFixture))
	})
	WithAPIKey("secret")(c)
	WithEmail("me@example.org")(c)

	if _, err := c.Search(context.Background(), "x"); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
}

func TestErrorPredicates(t *testing.T) {
	if !IsNotFound(&APIError{StatusCode: 404}) {
		t.Error("IsNotFound(404) = false")
	}
	if !IsRateLimited(&APIError{StatusCode: 429}) {
		t.Error("IsRateLimited(429) = false")
	}
	if IsTransport(errors.New("other")) {
		t.Error("IsTransport(other) = true")
	}
}
