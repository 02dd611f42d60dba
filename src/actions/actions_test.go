package actions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kairo/src/content"
)

func TestDefaultCatalogIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestInstruction(t *testing.T) {
	c := Default()

	t.Run("custom has no instruction", func(t *testing.T) {
		for _, kind := range []content.Kind{content.KindText, content.KindImage} {
			instr, err := c.Instruction(kind, Custom)
			require.NoError(t, err)
			assert.Nil(t, instr)
		}
	})

	t.Run("shared action differs per kind", func(t *testing.T) {
		textInstr, err := c.Instruction(content.KindText, Summarize)
		require.NoError(t, err)
		imgInstr, err := c.Instruction(content.KindImage, Summarize)
		require.NoError(t, err)
		assert.NotEqual(t, *textInstr, *imgInstr)
	})

	t.Run("kind specific action missing for other kind", func(t *testing.T) {
		_, err := c.Instruction(content.KindImage, FixGrammar)
		assert.ErrorIs(t, err, ErrUnknownAction)
	})

	t.Run("language substituted", func(t *testing.T) {
		c := Default()
		c.SetLanguage("German")
		instr, err := c.Instruction(content.KindText, Translate)
		require.NoError(t, err)
		assert.Contains(t, *instr, "to German")
		assert.NotContains(t, *instr, languagePlaceholder)
	})
}

func TestValidate(t *testing.T) {
	custom := Action{ID: Custom, Label: "Ask"}

	tests := []struct {
		name    string
		build   func() *Catalog
		wantErr string
	}{
		{
			name: "missing shared action",
			build: func() *Catalog {
				return New().
					Add(content.KindText, custom).
					Add(content.KindImage, custom).
					Add(content.KindText, Action{ID: Summarize, Instruction: "sum"})
			},
			wantErr: "image: missing summarize",
		},
		{
			name: "kind specific is fine",
			build: func() *Catalog {
				return New().
					Add(content.KindText, custom).
					Add(content.KindImage, custom).
					OnlyFor(content.KindText, Action{ID: FixGrammar, Instruction: "fix"})
			},
		},
		{
			name: "custom missing",
			build: func() *Catalog {
				return New().Add(content.KindText, custom)
			},
			wantErr: "image: missing custom",
		},
		{
			name: "empty instruction",
			build: func() *Catalog {
				return New().
					Add(content.KindText, custom).
					Add(content.KindImage, custom).
					OnlyFor(content.KindImage, Action{ID: Describe})
			},
			wantErr: "image: describe has an empty instruction",
		},
		{
			name: "custom with instruction",
			build: func() *Catalog {
				return New().
					Add(content.KindText, Action{ID: Custom, Instruction: "nope"}).
					Add(content.KindImage, custom)
			},
			wantErr: "text: custom must not carry an instruction",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build().Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestListKeepsOrder(t *testing.T) {
	list := Default().List(content.KindImage)
	require.NotEmpty(t, list)
	assert.Equal(t, Describe, list[0].ID)
	assert.Equal(t, Custom, list[len(list)-1].ID)
}
