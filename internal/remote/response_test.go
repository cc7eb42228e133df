package remote_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/Houeta/staff-directory/internal/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponse_Summary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		resp remote.Response
		want string
	}{
		{
			name: "json error field",
			resp: remote.Response{ContentType: "application/json", Body: []byte(`{"error":"Employee not found"}`)},
			want: "Employee not found",
		},
		{
			name: "json message field",
			resp: remote.Response{ContentType: "application/problem+json", Body: []byte(`{"message":"bad input"}`)},
			want: "bad input",
		},
		{
			name: "json without known fields",
			resp: remote.Response{ContentType: "application/json", Body: []byte(`{"detail": "x"}`)},
			want: `{"detail": "x"}`,
		},
		{
			name: "html page",
			resp: remote.Response{
				ContentType: "text/html; charset=utf-8",
				Body: []byte(`<html><head><title>405 Not Allowed</title><style>p{}</style></head>
					<body><h1>405 Not Allowed</h1><hr><center>nginx</center><script>x()</script></body></html>`),
			},
			want: "405 Not Allowed",
		},
		{
			name: "html page with distinct text",
			resp: remote.Response{
				ContentType: "text/html",
				Body:        []byte(`<html><head><title>Error</title></head><body><p>Cannot PATCH  /api/employees/1</p></body></html>`),
			},
			want: "Error: Cannot PATCH /api/employees/1",
		},
		{
			name: "plain text",
			resp: remote.Response{ContentType: "text/plain", Body: []byte("  method\nnot allowed ")},
			want: "method not allowed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.resp.Summary())
		})
	}
}

func TestResponse_SummaryTruncates(t *testing.T) {
	t.Parallel()

	resp := remote.Response{ContentType: "text/plain", Body: []byte(strings.Repeat("a", 500))}
	assert.Len(t, resp.Summary(), 203)
}

func TestResponse_Err(t *testing.T) {
	t.Parallel()

	err := remote.Response{StatusCode: http.StatusNotFound, Body: []byte(`{"error":"nope"}`)}.Err()

	require.ErrorIs(t, err, remote.ErrUnexpectedStatus)
	assert.Equal(t, "unexpected status, status code: 404: nope", err.Error())
}

func TestResponse_Records(t *testing.T) {
	t.Parallel()

	records, shape, err := remote.Response{Body: []byte(` [{"empid":"E-1"}] `)}.Records()
	require.NoError(t, err)
	assert.Equal(t, remote.ShapeList, shape)
	assert.Len(t, records, 1)

	records, shape, err = remote.Response{Body: []byte(`[{"empid":"E-1"}, 5, null, "x", [1], {"empid":"E-2"}]`)}.Records()
	require.NoError(t, err)
	assert.Equal(t, remote.ShapeList, shape)
	require.Len(t, records, 2)
	assert.Equal(t, "E-2", records[1].ID())

	_, _, err = remote.Response{Body: []byte(`"text"`)}.Records()
	require.ErrorIs(t, err, remote.ErrNotRecord)

	_, _, err = remote.Response{}.Records()
	require.ErrorIs(t, err, remote.ErrNotRecord)
}

func TestResponse_OK(t *testing.T) {
	t.Parallel()

	assert.True(t, remote.Response{StatusCode: http.StatusOK}.OK())
	assert.True(t, remote.Response{StatusCode: http.StatusCreated}.OK())
	assert.False(t, remote.Response{StatusCode: http.StatusMultipleChoices}.OK())
	assert.False(t, remote.Response{StatusCode: http.StatusMethodNotAllowed}.OK())
}

func TestResponse_SingleRecord(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want string
		ok   bool
	}{
		{name: "object", body: `{"empid":"E-1"}`, want: "E-1", ok: true},
		{name: "one element list", body: `[{"empid":"E-1"}]`, want: "E-1", ok: true},
		{name: "empty object", body: `{}`},
		{name: "empty object in list", body: `[{}]`},
		{name: "two records", body: `[{"empid":"E-1"},{"empid":"E-2"}]`},
		{name: "not json", body: `<html></html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec, ok := remote.Response{Body: []byte(tt.body)}.SingleRecord()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, rec.ID())
		})
	}
}
