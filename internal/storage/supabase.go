package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const supabaseTimeout = 30 * time.Second

// SupabaseStore uploads objects through the Supabase Storage REST API.
type SupabaseStore struct {
	baseURL string
	client  *resty.Client
}

type supabaseError struct {
	StatusCode string `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

// NewSupabaseStore builds a store for the project at projectURL
// (https://<ref>.supabase.co) authenticated with serviceKey.
func NewSupabaseStore(projectURL, serviceKey string) (*SupabaseStore, error) {
	projectURL = strings.TrimRight(strings.TrimSpace(projectURL), "/")
	if projectURL == "" {
		return nil, errors.New("storage: supabase url is required")
	}
	if strings.TrimSpace(serviceKey) == "" {
		return nil, errors.New("storage: supabase service key is required")
	}
	client := resty.New().
		SetBaseURL(projectURL+"/storage/v1").
		SetTimeout(supabaseTimeout).
		SetAuthToken(serviceKey).
		SetHeader("apikey", serviceKey)
	return &SupabaseStore{baseURL: projectURL, client: client}, nil
}

func (s *SupabaseStore) Put(ctx context.Context, bucket, key, contentType string, data []byte) (string, error) {
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	objectPath := url.PathEscape(bucket) + "/" + escapeKey(cleanKey)

	var apiErr supabaseError
	res, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetHeader("x-upsert", "false").
		SetBody(data).
		SetError(&apiErr).
		Post("/object/" + objectPath)
	if err != nil {
		return "", fmt.Errorf("storage: supabase upload: %w", err)
	}
	if res.IsError() {
		msg := apiErr.Message
		if msg == "" {
			msg = strings.TrimSpace(res.String())
		}
		return "", fmt.Errorf("storage: supabase upload: status %d: %s", res.StatusCode(), msg)
	}
	return s.PublicURL(bucket, cleanKey), nil
}

// PublicURL is the read URL of an object in a public bucket.
func (s *SupabaseStore) PublicURL(bucket, key string) string {
	return s.baseURL + "/storage/v1/object/public/" + url.PathEscape(bucket) + "/" + escapeKey(key)
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
