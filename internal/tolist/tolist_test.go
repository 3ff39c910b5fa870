// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tolist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/opa-api/pkg/types"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []int64
		wantErr error
	}{
		{
			name:  "two features in order",
			input: `{"features":[{"attributes":{"BRT_ID":"42"}},{"attributes":{"BRT_ID":"7"}}]}`,
			want:  []int64{42, 7},
		},
		{
			name:  "empty features",
			input: `{"features":[]}`,
			want:  []int64{},
		},
		{
			name:  "order is preserved without sorting or dedup",
			input: `{"features":[{"attributes":{"BRT_ID":"3"}},{"attributes":{"BRT_ID":"1"}},{"attributes":{"BRT_ID":"3"}}]}`,
			want:  []int64{3, 1, 3},
		},
		{
			name:  "numeric BRT_ID",
			input: `{"features":[{"attributes":{"BRT_ID":884350465}}]}`,
			want:  []int64{884350465},
		},
		{
			name:  "numeric BRT_ID in exponent form",
			input: `{"features":[{"attributes":{"BRT_ID":1e3}},{"attributes":{"BRT_ID":8.8435E8}}]}`,
			want:  []int64{1000, 884350000},
		},
		{
			name:  "fractional numeric BRT_ID truncates",
			input: `{"features":[{"attributes":{"BRT_ID":42.9}},{"attributes":{"BRT_ID":-0}}]}`,
			want:  []int64{42, 0},
		},
		{
			name:  "huge numeric BRT_ID keeps exponent form",
			input: `{"features":[{"attributes":{"BRT_ID":2.5e21}}]}`,
			want:  []int64{2},
		},
		{
			name:    "out of range numeric BRT_ID",
			input:   `{"features":[{"attributes":{"BRT_ID":1e400}}]}`,
			wantErr: ErrField,
		},
		{
			name:  "trailing garbage truncates",
			input: `{"features":[{"attributes":{"BRT_ID":"12ab"}},{"attributes":{"BRT_ID":" 0042 "}}]}`,
			want:  []int64{12, 42},
		},
		{
			name:  "extra fields are ignored",
			input: `{"displayFieldName":"","features":[{"attributes":{"BRT_ID":"5","ADDRESS":"1 MAIN ST"},"geometry":{"x":1,"y":2}}]}`,
			want:  []int64{5},
		},
		{
			name:    "malformed JSON",
			input:   `{"features":[`,
			wantErr: ErrParse,
		},
		{
			name:    "missing features",
			input:   `{"type":"FeatureCollection"}`,
			wantErr: ErrParse,
		},
		{
			name:    "null features",
			input:   `{"features":null}`,
			wantErr: ErrParse,
		},
		{
			name:    "top level array",
			input:   `[1,2]`,
			wantErr: ErrParse,
		},
		{
			name:    "missing attributes",
			input:   `{"features":[{"geometry":{}}]}`,
			wantErr: ErrField,
		},
		{
			name:    "missing BRT_ID",
			input:   `{"features":[{"attributes":{"ADDRESS":"1 MAIN ST"}}]}`,
			wantErr: ErrField,
		},
		{
			name:    "null BRT_ID",
			input:   `{"features":[{"attributes":{"BRT_ID":null}}]}`,
			wantErr: ErrField,
		},
		{
			name:    "non-numeric BRT_ID",
			input:   `{"features":[{"attributes":{"BRT_ID":"abc"}}]}`,
			wantErr: ErrField,
		},
		{
			name:    "boolean BRT_ID",
			input:   `{"features":[{"attributes":{"BRT_ID":true}}]}`,
			wantErr: ErrField,
		},
		{
			name:    "feature is not an object",
			input:   `{"features":[1]}`,
			wantErr: ErrField,
		},
		{
			name:    "null feature",
			input:   `{"features":[null]}`,
			wantErr: ErrField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract([]byte(tt.input))
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtract_ErrorNamesFeatureIndex(t *testing.T) {
	_, err := Extract([]byte(`{"features":[{"attributes":{"BRT_ID":"1"}},{"attributes":{}}]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "feature 1")
}

func TestExtract_LengthMatchesFeatures(t *testing.T) {
	input := `{"features":[`
	for i := 0; i < 50; i++ {
		if i > 0 {
			input += ","
		}
		input += `{"attributes":{"BRT_ID":"` + string(rune('1'+i%9)) + `"}}`
	}
	input += `]}`

	got, err := Extract([]byte(input))
	require.NoError(t, err)
	assert.Len(t, got, 50)
}

func TestParseLeadingInt(t *testing.T) {
	tests := []struct {
		in     string
		want   int64
		wantOK bool
	}{
		{"42", 42, true},
		{"007", 7, true},
		{"-15", -15, true},
		{"+8", 8, true},
		{"  19", 19, true},
		{"\t3\n", 3, true},
		{"\u00a0\ufeff11", 11, true},
		{"\u2003 42", 42, true},
		{"\u3000\u205f\u202f\u2028\u16808", 8, true},
		{"12ab", 12, true},
		{"7.9", 7, true},
		{"1e3", 1, true},
		{"", 0, false},
		{"abc", 0, false},
		{"-", 0, false},
		{" - 5", 0, false},
		{"99999999999999999999", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseLeadingInt(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNumberText(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{884350465, "884350465"},
		{1e3, "1000"},
		{8.8435e8, "884350000"},
		{0.5, "0.5"},
		{1e20, "100000000000000000000"},
		{1e21, "1e+21"},
		{1e-7, "1e-07"},
		{-12.25, "-12.25"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, numberText(tt.in))
		})
	}
}

func TestEncode(t *testing.T) {
	got, err := Encode([]int64{42, 7})
	require.NoError(t, err)
	assert.Equal(t, "[42,7]", string(got))

	got, err = Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	cfg := types.ToListConfig{
		Input:  filepath.Join(dir, types.DefaultAddressesFile),
		Output: filepath.Join(dir, types.DefaultIDListFile),
	}
	writeFile(t, cfg.Input, `{"features":[{"attributes":{"BRT_ID":"42"}},{"attributes":{"BRT_ID":"7"}}]}`)

	n, err := Run(cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "[42,7]", readFile(t, cfg.Output))
}

func TestRun_Idempotent(t *testing.T) {
	dir := t.TempDir()
	cfg := types.ToListConfig{
		Input:  filepath.Join(dir, "in.json"),
		Output: filepath.Join(dir, "out.json"),
	}
	writeFile(t, cfg.Input, `{"features":[{"attributes":{"BRT_ID":"884350465"}},{"attributes":{"BRT_ID":"12"}}]}`)

	_, err := Run(cfg)
	require.NoError(t, err)
	first := readFile(t, cfg.Output)

	_, err = Run(cfg)
	require.NoError(t, err)
	assert.Equal(t, first, readFile(t, cfg.Output))
}

func TestRun_MissingInputLeavesNoOutput(t *testing.T) {
	dir := t.TempDir()
	cfg := types.ToListConfig{
		Input:  filepath.Join(dir, "absent.json"),
		Output: filepath.Join(dir, "out.json"),
	}

	_, err := Run(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIO)

	_, statErr := os.Stat(cfg.Output)
	assert.True(t, os.IsNotExist(statErr), "output must not be created")
}

func TestRun_FailureKeepsExistingOutput(t *testing.T) {
	dir := t.TempDir()
	cfg := types.ToListConfig{
		Input:  filepath.Join(dir, "in.json"),
		Output: filepath.Join(dir, "out.json"),
	}
	writeFile(t, cfg.Input, `{"features":[{"attributes":{"BRT_ID":"1"}},{"attributes":{}}]}`)
	writeFile(t, cfg.Output, "[9]")

	_, err := Run(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrField)
	assert.Equal(t, "[9]", readFile(t, cfg.Output))
}

func TestRun_UnwritableOutput(t *testing.T) {
	dir := t.TempDir()
	cfg := types.ToListConfig{
		Input:  filepath.Join(dir, "in.json"),
		Output: filepath.Join(dir, "missing-dir", "out.json"),
	}
	writeFile(t, cfg.Input, `{"features":[]}`)

	_, err := Run(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIO)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
