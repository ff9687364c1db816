package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedCatalog(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	services := r.List()
	require.Len(t, services, 11)
	assert.Equal(t, "Urgencias", services[0].Name)
	assert.Equal(t, "Esterilización", services[10].Name)
}

func TestLookup(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"Laboratorio", "laboratorio", true},
		{"  consulta externa ", "consulta-externa", true},
		{"imagenes-diagnosticas", "imagenes-diagnosticas", true},
		{"Imágenes Diagnósticas", "imagenes-diagnosticas", true},
		{"Cardiología", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			svc, ok := r.Lookup(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, svc.Code)
		})
	}
}

func TestParseRejectsBadCatalogs(t *testing.T) {
	cases := map[string]string{
		"empty":      "services: []",
		"no name":    "services:\n  - code: a\n",
		"duplicates": "services:\n  - code: a\n    name: A\n  - code: a\n    name: B\n",
		"not yaml":   "services: [",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestListReturnsCopy(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	list := r.List()
	list[0].Name = "changed"
	assert.Equal(t, "Urgencias", r.List()[0].Name)
}
