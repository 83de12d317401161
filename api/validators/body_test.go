package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/types"
)

func TestDecodeJSONBodyReportsFirstField(t *testing.T) {
	req := httptest.NewRequest("POST", "/user/addresses", strings.NewReader(`{"address":"too short"}`))
	var body types.AddressRequest
	err := DecodeJSONBody(req, &body)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if typed.Message() != "address must be at least 20 characters" {
		t.Fatalf("unexpected message %q", typed.Message())
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest("POST", "/cart", strings.NewReader(`{"productId":"p1","qty":1,"extra":true}`))
	var body types.CartItemRequest
	if err := DecodeJSONBody(req, &body); pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyAccepts(t *testing.T) {
	req := httptest.NewRequest("POST", "/auth/register", strings.NewReader(`{"username":"crio-user","password":"learnwithcrio"}`))
	var body types.RegisterRequest
	if err := DecodeJSONBody(req, &body); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if body.Username != "crio-user" {
		t.Fatalf("unexpected username %q", body.Username)
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  running shoes  ", 7); got != "running" {
		t.Fatalf("unexpected %q", got)
	}
}
