package viewstate

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/testing/protocmp"
	"google.golang.org/protobuf/types/known/structpb"
)

func doc(t *testing.T, js string) *structpb.Value {
	t.Helper()
	v, err := ParseDocument([]byte(js))
	require.NoError(t, err)
	return v
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name   string
		target string
		source string
		want   string
	}{
		{
			name:   "untouched keys are preserved",
			target: `{"a":{"x":1,"y":2},"b":3}`,
			source: `{"a":{"y":5}}`,
			want:   `{"a":{"x":1,"y":5},"b":3}`,
		},
		{
			name:   "arrays are replaced wholesale",
			target: `{"tags":[1,2,3]}`,
			source: `{"tags":[9]}`,
			want:   `{"tags":[9]}`,
		},
		{
			name:   "null overwrites without deleting the key",
			target: `{"a":{"x":1}}`,
			source: `{"a":null}`,
			want:   `{"a":null}`,
		},
		{
			name:   "array source does not recurse into object target",
			target: `{"a":{"x":1}}`,
			source: `{"a":[1,2]}`,
			want:   `{"a":[1,2]}`,
		},
		{
			name:   "object source merges into missing key",
			target: `{"b":1}`,
			source: `{"a":{"x":{"y":true}}}`,
			want:   `{"a":{"x":{"y":true}},"b":1}`,
		},
		{
			name:   "object source replaces scalar target",
			target: `{"a":"flat"}`,
			source: `{"a":{"x":1}}`,
			want:   `{"a":{"x":1}}`,
		},
		{
			name:   "object source replaces array target",
			target: `{"a":[1,2]}`,
			source: `{"a":{"x":1}}`,
			want:   `{"a":{"x":1}}`,
		},
		{
			name:   "empty object patch is a no-op",
			target: `{"a":{"x":1},"b":[1]}`,
			source: `{}`,
			want:   `{"a":{"x":1},"b":[1]}`,
		},
		{
			name:   "deep nesting keeps siblings at every level",
			target: `{"l1":{"keep":1,"l2":{"keep":2,"l3":{"keep":3,"v":0}}}}`,
			source: `{"l1":{"l2":{"l3":{"v":9}}}}`,
			want:   `{"l1":{"keep":1,"l2":{"keep":2,"l3":{"keep":3,"v":9}}}}`,
		},
		{
			name:   "array patch leaves the document unchanged",
			target: `{"a":1}`,
			source: `[1,2]`,
			want:   `{"a":1}`,
		},
		{
			name:   "null patch leaves the document unchanged",
			target: `{"a":{"b":1},"c":[1]}`,
			source: `null`,
			want:   `{"a":{"b":1},"c":[1]}`,
		},
		{
			name:   "scalar patch leaves the document unchanged",
			target: `{"a":1}`,
			source: `"x"`,
			want:   `{"a":1}`,
		},
		{
			name:   "object patch onto non-object document",
			target: `"scalar"`,
			source: `{"a":1}`,
			want:   `{"a":1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(doc(t, tt.target), doc(t, tt.source))
			if diff := cmp.Diff(doc(t, tt.want), got, protocmp.Transform()); diff != "" {
				t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMergeDoesNotModifyInputs(t *testing.T) {
	target := doc(t, `{"a":{"x":1},"b":[1,2]}`)
	source := doc(t, `{"a":{"y":2},"b":[3]}`)
	targetBefore := doc(t, `{"a":{"x":1},"b":[1,2]}`)
	sourceBefore := doc(t, `{"a":{"y":2},"b":[3]}`)

	Merge(target, source)

	assert.Empty(t, cmp.Diff(targetBefore, target, protocmp.Transform()))
	assert.Empty(t, cmp.Diff(sourceBefore, source, protocmp.Transform()))
}

func TestMergeNilInputs(t *testing.T) {
	got := Merge(nil, doc(t, `{"a":1}`))
	assert.Empty(t, cmp.Diff(doc(t, `{"a":1}`), got, protocmp.Transform()))

	got = Merge(doc(t, `{"a":1}`), nil)
	assert.Empty(t, cmp.Diff(doc(t, `{"a":1}`), got, protocmp.Transform()))

	got = Merge(nil, nil)
	assert.Empty(t, cmp.Diff(structpb.NewNullValue(), got, protocmp.Transform()))
}

func TestMergeNonObjectSourceReturnsCopy(t *testing.T) {
	target := doc(t, `{"a":{"b":1}}`)
	got := Merge(target, doc(t, `null`))
	got.GetStructValue().GetFields()["a"].GetStructValue().Fields["b"] = structpb.NewNumberValue(2)
	assert.Equal(t, float64(1), target.GetStructValue().GetFields()["a"].GetStructValue().GetFields()["b"].GetNumberValue())
}

func TestDefaultDocument(t *testing.T) {
	want := doc(t, `{
		"currentMode": "columns",
		"kanbanGrouping": "status",
		"taskView": "list",
		"filters": {"priority": "all", "tags": [], "showCompleted": false}
	}`)
	assert.Empty(t, cmp.Diff(want, DefaultDocument(), protocmp.Transform()))
}

func TestDefaultDocumentIsACopy(t *testing.T) {
	first := DefaultDocument()
	first.GetStructValue().Fields["currentMode"] = structpb.NewStringValue("list")

	second := DefaultDocument()
	assert.Equal(t, "columns", second.GetStructValue().GetFields()["currentMode"].GetStringValue())
}

func TestParseDocument(t *testing.T) {
	for _, js := range []string{`{}`, `[]`, `null`, `"s"`, `1.5`, `true`, `{"nested":{"list":[{"a":null}]}}`} {
		_, err := ParseDocument([]byte(js))
		assert.NoError(t, err, js)
	}
	for _, js := range []string{``, `{`, `{"a":}`, `undefined`, `{"a":1} {"b":2}`} {
		_, err := ParseDocument([]byte(js))
		assert.Error(t, err, js)
	}
}

func TestParseDocumentDuplicateKeysLastWins(t *testing.T) {
	got := doc(t, `{"a":1,"b":{"c":true,"c":false},"a":2}`)
	assert.Empty(t, cmp.Diff(doc(t, `{"a":2,"b":{"c":false}}`), got, protocmp.Transform()))
}

func TestMarshalDocumentRoundTrip(t *testing.T) {
	original := `{"currentMode":"list","filters":{"tags":["a","b"],"showCompleted":true},"count":3,"none":null}`
	data, err := MarshalDocument(doc(t, original))
	require.NoError(t, err)
	assert.JSONEq(t, original, string(data))

	data, err = MarshalDocument(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `null`, string(data))
}
