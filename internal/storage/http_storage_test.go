package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTTPSlideFetcherRetryLogic(t *testing.T) {
	payload := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

	tests := []struct {
		name          string
		responses     []int // status codes returned in sequence
		expectCalls   int
		expectError   bool
		errorContains string
	}{
		{
			name:        "Success on first attempt",
			responses:   []int{200},
			expectCalls: 1,
		},
		{
			name:        "Success after one 5xx",
			responses:   []int{500, 200},
			expectCalls: 2,
		},
		{
			name:          "4xx is not retried",
			responses:     []int{404},
			expectCalls:   1,
			expectError:   true,
			errorContains: "client error: status code 404",
		},
		{
			name:          "5xx then 4xx stops at the 4xx",
			responses:     []int{500, 404},
			expectCalls:   2,
			expectError:   true,
			errorContains: "client error: status code 404",
		},
		{
			name:          "All attempts exhausted on 5xx",
			responses:     []int{500, 502, 503},
			expectCalls:   3,
			expectError:   true,
			errorContains: "server error: status code 503",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				status := http.StatusInternalServerError
				if calls < len(tt.responses) {
					status = tt.responses[calls]
				}
				calls++

				if status == http.StatusOK {
					w.Write(payload)
					return
				}
				w.WriteHeader(status)
				fmt.Fprintf(w, "Error %d", status)
			}))
			defer server.Close()

			fetcher := NewHTTPSlideFetcher()
			data, err := fetcher.FetchSlide(context.Background(), server.URL)

			if calls != tt.expectCalls {
				t.Errorf("requests = %d, want %d", calls, tt.expectCalls)
			}

			if tt.expectError {
				if err == nil {
					t.Fatal("expected error, got none")
				}
				if tt.errorContains != "" && !strings.Contains(err.Error(), tt.errorContains) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.errorContains)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.Equal(data, payload) {
				t.Error("fetched bytes differ from the served payload")
			}
		})
	}
}

func TestHTTPSlideFetcherReturnsRawBytes(t *testing.T) {
	// The fetcher must not decode or reencode; the pipeline needs the
	// original encoded payload verbatim
	payload := []byte("definitely-not-a-valid-image")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer server.Close()

	fetcher := NewHTTPSlideFetcher()
	data, err := fetcher.FetchSlide(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Error("fetcher must return the payload unmodified")
	}
}

func TestHTTPSlideFetcherContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := NewHTTPSlideFetcher()
	_, err := fetcher.FetchSlide(ctx, server.URL)
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
