package httpx

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type decodeTarget struct {
	Name string `json:"name"`
}

func TestDecodeJSON(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"cash"}`))
	var target decodeTarget
	require.NoError(t, DecodeJSON(req, &target))
	require.Equal(t, "cash", target.Name)
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"cash","extra":1}`))
	var target decodeTarget
	require.Error(t, DecodeJSON(req, &target))
}

func TestDecodeJSONRejectsTrailingContent(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"cash"}{"name":"bank"}`))
	var target decodeTarget
	require.Error(t, DecodeJSON(req, &target))
}
