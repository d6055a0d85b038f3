package main

import (
	"reflect"
	"testing"

	"github.com/seenimoa/edgarwatch/pkg/models"
)

func TestParseIdentifiers(t *testing.T) {
	got, err := parseIdentifiers([]string{"ticker:AAPL", "CIK:320193", "MSFT", "name:Apple Inc."})
	if err != nil {
		t.Fatal(err)
	}
	want := []models.CompanyIdentifier{
		{Kind: models.KindTicker, Value: "AAPL"},
		{Kind: models.KindCIK, Value: "320193"},
		{Kind: models.KindTicker, Value: "MSFT"},
		{Kind: models.KindName, Value: "Apple Inc."},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}

	if _, err := parseIdentifiers([]string{"ticker: "}); err == nil {
		t.Error("expected error for empty value")
	}
}
