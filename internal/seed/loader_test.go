package seed

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"medikart/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalog = `{"name":"Paracetamol 500mg","description":"Pain relief","category":"Pain Relief","price":"50.00","stock":100,"manufacturer":"PharmaCorp Ltd.","expiryDate":"2027-12-31","requiresPrescription":false}

{"name":"Amoxicillin 250mg","description":"Antibiotic","category":"Antibiotics","price":120,"stock":75,"manufacturer":"HealthMed Pharma","expiryDate":"2027-10-31","requiresPrescription":true}
`

func gzipBytes(t *testing.T, content string) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

// createTestCatalogFile writes a gzipped catalogue into a temp dir.
func createTestCatalogFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "catalog.jsonl.gz")
	require.NoError(t, os.WriteFile(path, gzipBytes(t, content), 0o600))
	return path
}

func TestFileLoader_Load(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())
	path := createTestCatalogFile(t, sampleCatalog)

	medicines, err := loader.Load(context.Background(), path)

	require.NoError(t, err)
	require.Len(t, medicines, 2)

	first := medicines[0]
	assert.Equal(t, "Paracetamol 500mg", first.Name)
	assert.True(t, decimal.RequireFromString("50").Equal(first.Price))
	assert.Equal(t, 100, first.Stock)
	assert.Equal(t, time.Date(2027, 12, 31, 0, 0, 0, 0, time.UTC), first.ExpiryDate)
	assert.False(t, first.RequiresPrescription)
	assert.NotEqual(t, first.ID, medicines[1].ID)

	assert.True(t, medicines[1].RequiresPrescription)
	assert.True(t, decimal.NewFromInt(120).Equal(medicines[1].Price))
}

func TestFileLoader_Errors(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())
	ctx := context.Background()

	notGzip := filepath.Join(t.TempDir(), "plain.jsonl.gz")
	require.NoError(t, os.WriteFile(notGzip, []byte("not gzip"), 0o600))

	tests := []struct {
		name     string
		path     string
		errMatch string
	}{
		{
			name:     "Missing file",
			path:     filepath.Join(t.TempDir(), "missing.gz"),
			errMatch: "failed to open catalogue file",
		},
		{
			name:     "Not gzipped",
			path:     notGzip,
			errMatch: "failed to create gzip reader",
		},
		{
			name:     "Malformed JSON",
			path:     createTestCatalogFile(t, "{not json}\n"),
			errMatch: "line 1",
		},
		{
			name:     "Bad expiry date",
			path:     createTestCatalogFile(t, `{"name":"X","price":"1","stock":1,"expiryDate":"31/12/2027"}`),
			errMatch: "invalid expiryDate",
		},
		{
			name:     "Negative stock",
			path:     createTestCatalogFile(t, `{"name":"X","price":"1","stock":-1,"expiryDate":"2027-12-31"}`),
			errMatch: "stock must not be negative",
		},
		{
			name:     "Negative price",
			path:     createTestCatalogFile(t, `{"name":"X","price":"-1","stock":1,"expiryDate":"2027-12-31"}`),
			errMatch: "price must not be negative",
		},
		{
			name:     "Missing name",
			path:     createTestCatalogFile(t, `{"price":"1","stock":1,"expiryDate":"2027-12-31"}`),
			errMatch: "name is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			medicines, err := loader.Load(ctx, tt.path)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMatch)
			assert.Nil(t, medicines)
		})
	}
}

func TestFileLoader_ShippedCatalog(t *testing.T) {
	path := filepath.Join("..", "..", "data", "catalog", "medicines.jsonl.gz")
	if _, err := os.Stat(path); err != nil {
		t.Skip("shipped catalogue not present")
	}

	medicines, err := NewFileLoader(zerolog.Nop()).Load(context.Background(), path)

	require.NoError(t, err)
	assert.Len(t, medicines, 15)
}

// fakeS3 serves objects from memory.
type fakeS3 struct {
	objects map[string][]byte
	err     error
}

func (f *fakeS3) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, ok := f.objects[aws.ToString(params.Bucket)+"/"+aws.ToString(params.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

func TestS3Loader_Load(t *testing.T) {
	client := &fakeS3{objects: map[string][]byte{
		"pharmacy/catalog/medicines.jsonl.gz": gzipBytes(t, sampleCatalog),
	}}
	loader := newS3Loader(client, "pharmacy", zerolog.Nop())

	medicines, err := loader.Load(context.Background(), "catalog/medicines.jsonl.gz")

	require.NoError(t, err)
	assert.Len(t, medicines, 2)
}

func TestS3Loader_GetObjectFails(t *testing.T) {
	loader := newS3Loader(&fakeS3{err: errors.New("access denied")}, "pharmacy", zerolog.Nop())

	medicines, err := loader.Load(context.Background(), "catalog/medicines.jsonl.gz")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get object from S3")
	assert.Nil(t, medicines)
}

// mockLoader is a function-backed Loader.
type mockLoader struct {
	loadFunc func(ctx context.Context, path string) ([]model.Medicine, error)
}

func (m *mockLoader) Load(ctx context.Context, path string) ([]model.Medicine, error) {
	if m.loadFunc != nil {
		return m.loadFunc(ctx, path)
	}
	return nil, errors.New("not implemented")
}

func named(names ...string) []model.Medicine {
	out := make([]model.Medicine, len(names))
	for i, n := range names {
		out[i] = model.Medicine{Name: n}
	}
	return out
}

func TestFallbackLoader(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		s3        Loader
		s3Enabled bool
		expected  string
	}{
		{
			name: "S3 succeeds",
			s3: &mockLoader{loadFunc: func(_ context.Context, path string) ([]model.Medicine, error) {
				assert.Equal(t, "catalog/medicines.gz", path, "S3 key should have prefix")
				return named("from-s3"), nil
			}},
			s3Enabled: true,
			expected:  "from-s3",
		},
		{
			name: "S3 fails falls back to local",
			s3: &mockLoader{loadFunc: func(context.Context, string) ([]model.Medicine, error) {
				return nil, errors.New("S3 connection failed")
			}},
			s3Enabled: true,
			expected:  "from-file",
		},
		{
			name: "S3 disabled",
			s3: &mockLoader{loadFunc: func(context.Context, string) ([]model.Medicine, error) {
				t.Error("S3 loader should not be called when disabled")
				return nil, nil
			}},
			s3Enabled: false,
			expected:  "from-file",
		},
		{
			name:      "No S3 loader",
			s3:        nil,
			s3Enabled: true,
			expected:  "from-file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := &mockLoader{loadFunc: func(_ context.Context, path string) ([]model.Medicine, error) {
				assert.Equal(t, "medicines.gz", path, "local path should not have prefix")
				return named("from-file"), nil
			}}

			loader := NewFallbackLoader(tt.s3, file, "catalog/", tt.s3Enabled, zerolog.Nop())
			medicines, err := loader.Load(ctx, "medicines.gz")

			require.NoError(t, err)
			require.Len(t, medicines, 1)
			assert.Equal(t, tt.expected, medicines[0].Name)
		})
	}
}

func TestLoadCatalog_MergesInFileOrder(t *testing.T) {
	loader := &mockLoader{loadFunc: func(_ context.Context, path string) ([]model.Medicine, error) {
		switch path {
		case "a.gz":
			return []model.Medicine{{Name: "Aspirin", Stock: 1}, {Name: "Cetirizine", Stock: 1}}, nil
		case "b.gz":
			return []model.Medicine{{Name: "Aspirin", Stock: 9}, {Name: "Ibuprofen", Stock: 1}}, nil
		}
		return nil, errors.New("unexpected path")
	}}

	medicines, err := LoadCatalog(context.Background(), loader, []string{"a.gz", "b.gz"}, zerolog.Nop())

	require.NoError(t, err)
	require.Len(t, medicines, 3)
	assert.Equal(t, "Aspirin", medicines[0].Name)
	assert.Equal(t, 9, medicines[0].Stock, "later file wins")
	assert.Equal(t, "Cetirizine", medicines[1].Name)
	assert.Equal(t, "Ibuprofen", medicines[2].Name)
}

func TestLoadCatalog_FailsWhenAnyFileFails(t *testing.T) {
	loader := &mockLoader{loadFunc: func(_ context.Context, path string) ([]model.Medicine, error) {
		if path == "bad.gz" {
			return nil, errors.New("corrupt")
		}
		return named("ok"), nil
	}}

	medicines, err := LoadCatalog(context.Background(), loader, []string{"good.gz", "bad.gz"}, zerolog.Nop())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.gz")
	assert.Nil(t, medicines)
}
