package adapt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lib/pq/oid"
)

func TestRegisterCompositeRoundTrip(t *testing.T) {
	r := newTestRegistry()

	info := CompositeTypeInfo{
		Oid: oid.Oid(100500),
		Fields: []FieldInfo{
			{Name: "name", Oid: oid.T_text},
			{Name: "age", Oid: oid.T_int4},
		},
	}
	RegisterComposite(r, info)

	in := map[string]any{"name": "ada", "age": int32(36)}

	d, err := r.FindDumper(in, TextFormat)
	require.NoError(t, err)
	out, err := d.Dump(in)
	require.NoError(t, err)
	assert.Equal(t, `(ada,36)`, string(out))

	l, err := r.FindLoader(info.Oid, TextFormat)
	require.NoError(t, err)
	v, err := l.Load(out)
	require.NoError(t, err)
	assert.Equal(t, in, v)
}

func TestRegisterCompositeNullField(t *testing.T) {
	r := newTestRegistry()

	info := CompositeTypeInfo{
		Oid: oid.Oid(100501),
		Fields: []FieldInfo{
			{Name: "a", Oid: oid.T_text},
		},
	}
	RegisterComposite(r, info)

	in := map[string]any{"a": nil}
	d, _ := r.FindDumper(in, TextFormat)
	out, err := d.Dump(in)
	require.NoError(t, err)
	assert.Equal(t, "()", string(out))

	l, _ := r.FindLoader(info.Oid, TextFormat)
	v, err := l.Load(out)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": nil}, v)
}

func TestRegisterCompositeWrongGoType(t *testing.T) {
	r := newTestRegistry()

	info := CompositeTypeInfo{Oid: oid.Oid(100502), Fields: []FieldInfo{{Name: "a", Oid: oid.T_text}}}
	RegisterComposite(r, info)

	d, _ := r.FindDumper(map[string]any{}, TextFormat)
	_, err := d.Dump("not a map")
	assert.Error(t, err)
}
