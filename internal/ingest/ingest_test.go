package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html>
<head><title>Acme Careers</title></head>
<body>
<nav>Home | Jobs | About</nav>
<script>trackVisit();</script>
<h1>Senior Backend Engineer</h1>
<div class="job-description">
  <p>We are hiring a backend engineer.</p>
  <p>Salary: competitive.   Remote friendly.</p>
</div>
<footer>Copyright Acme</footer>
</body>
</html>`

func TestExtractPosting(t *testing.T) {
	posting, err := ExtractPosting(samplePage)
	require.NoError(t, err)

	assert.Equal(t, "Senior Backend Engineer", posting.Title)
	assert.Contains(t, posting.Description, "We are hiring a backend engineer.")
	assert.Contains(t, posting.Description, "Salary: competitive. Remote friendly.")
	assert.NotContains(t, posting.Description, "trackVisit")
	assert.NotContains(t, posting.Description, "Copyright Acme")
}

func TestExtractPostingFallsBackToBody(t *testing.T) {
	posting, err := ExtractPosting(`<html><head><title>Plain Page</title></head><body><p>Just text.</p></body></html>`)
	require.NoError(t, err)

	assert.Equal(t, "Plain Page", posting.Title)
	assert.Equal(t, "Just text.", posting.Description)
}

func TestJobPosting(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	posting, err := NewFetcher().JobPosting(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, srv.URL, posting.URL)
	assert.Equal(t, "Senior Backend Engineer", posting.Title)
	assert.Contains(t, posting.Description, "backend engineer")
}

func TestJobPostingErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewFetcher()

	t.Run("invalid url", func(t *testing.T) {
		_, err := f.JobPosting(context.Background(), "not a url")
		var ierr *Error
		require.ErrorAs(t, err, &ierr)
	})

	t.Run("unsupported scheme", func(t *testing.T) {
		_, err := f.JobPosting(context.Background(), "ftp://example.com/job")
		var ierr *Error
		require.ErrorAs(t, err, &ierr)
		assert.Contains(t, ierr.Message, "scheme")
	})

	t.Run("non-200 status", func(t *testing.T) {
		_, err := f.JobPosting(context.Background(), srv.URL)
		var ierr *Error
		require.ErrorAs(t, err, &ierr)
		assert.Contains(t, ierr.Message, "404")
	})
}
