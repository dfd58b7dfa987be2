package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsStaffQuestion(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"¿Quién te atendió hoy?", true},
		{"Nombre de tu mesero", true},
		{"Who served you today?", true},
		{"¿Cómo calificas la comida?", false},
		{"¿Recomendarías el lugar?", false},
		{"Califica la atención del staff", true},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, IsStaffQuestion(tt.text))
		})
	}
}

func TestNormalizeStaffName(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Sí - juan pérez", "Juan Pérez"},
		{"si - MARIA", "Maria"},
		{"Yes - carlos", "Carlos"},
		{"  ana lópez  ", "Ana López"},
		{"PEDRO", "Pedro"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeStaffName(tt.raw))
		})
	}
}

func TestStaffAccumulator(t *testing.T) {
	acc := NewStaffAccumulator()

	acc.Record("juan", 5)
	acc.Record("Juan", 4)
	acc.Record("maria", 5)
	acc.Record("pedro", 3)

	// Ignorados: rating inválido y valor demasiado corto
	acc.Record("luis", 0)
	acc.Record("no", 5)

	ranking := acc.Ranking(5)

	assert.Len(t, ranking, 3)
	// maria (5.0) supera a juan (4.5) aunque juan tenga más menciones
	assert.Equal(t, "Maria", ranking[0].Name)
	assert.InDelta(t, 5.0, ranking[0].Average, 0.001)
	assert.Equal(t, "Juan", ranking[1].Name)
	assert.Equal(t, 2, ranking[1].Count)
	assert.InDelta(t, 4.5, ranking[1].Average, 0.001)
	assert.Equal(t, "Pedro", ranking[2].Name)
}

func TestStaffAccumulatorTieKeepsInsertionOrder(t *testing.T) {
	acc := NewStaffAccumulator()
	acc.Record("ana", 4)
	acc.Record("bruno", 4)

	ranking := acc.Ranking(5)
	assert.Equal(t, "Ana", ranking[0].Name)
	assert.Equal(t, "Bruno", ranking[1].Name)
}

func TestStaffAccumulatorTopN(t *testing.T) {
	acc := NewStaffAccumulator()
	for _, name := range []string{"uno x", "dos x", "tres x", "cuatro x", "cinco x", "seis x"} {
		acc.Record(name, 5)
	}
	assert.Len(t, acc.Ranking(5), 5)
}
