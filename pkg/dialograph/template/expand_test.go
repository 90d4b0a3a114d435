package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestExpand_BraceStyle tests ${var} pattern expansion.
func TestExpand_BraceStyle(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		vars     map[string]any
		expected string
	}{
		{
			name:     "simple variable",
			input:    "Greet ${customer_name}",
			vars:     map[string]any{"customer_name": "Ana"},
			expected: "Greet Ana",
		},
		{
			name:     "multiple variables",
			input:    "${greeting}, ${customer_name}!",
			vars:     map[string]any{"greeting": "Welcome back", "customer_name": "Ana"},
			expected: "Welcome back, Ana!",
		},
		{
			name:     "variable at start",
			input:    "${prefix}-suffix",
			vars:     map[string]any{"prefix": "test"},
			expected: "test-suffix",
		},
		{
			name:     "variable at end",
			input:    "prefix-${suffix}",
			vars:     map[string]any{"suffix": "test"},
			expected: "prefix-test",
		},
		{
			name:     "adjacent variables",
			input:    "${a}${b}${c}",
			vars:     map[string]any{"a": "1", "b": "2", "c": "3"},
			expected: "123",
		},
		{
			name:     "numeric value",
			input:    "attempts: ${attempts}",
			vars:     map[string]any{"attempts": 3},
			expected: "attempts: 3",
		},
		{
			name:     "boolean value",
			input:    "verified: ${verified}",
			vars:     map[string]any{"verified": true},
			expected: "verified: true",
		},
		{
			name:     "underscore in variable name",
			input:    "${order_id}",
			vars:     map[string]any{"order_id": "A-1042"},
			expected: "A-1042",
		},
		{
			name:     "number in variable name",
			input:    "${var1}",
			vars:     map[string]any{"var1": "value"},
			expected: "value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Expand(tt.input, tt.vars)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// TestExpand_DollarStyle tests $var pattern expansion.
func TestExpand_DollarStyle(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		vars     map[string]any
		expected string
	}{
		{
			name:     "simple variable",
			input:    "Greet $customer",
			vars:     map[string]any{"customer": "Ana"},
			expected: "Greet Ana",
		},
		{
			name:     "variable followed by space",
			input:    "$greeting friend",
			vars:     map[string]any{"greeting": "Hello"},
			expected: "Hello friend",
		},
		{
			name:     "variable followed by punctuation",
			input:    "$customer!",
			vars:     map[string]any{"customer": "Ana"},
			expected: "Ana!",
		},
		{
			name:     "word boundary detection",
			input:    "$topic is different from $topicDetail",
			vars:     map[string]any{"topic": "billing", "topicDetail": "late fee"},
			expected: "billing is different from late fee",
		},
		{
			name:     "multiple dollar variables",
			input:    "$a $b $c",
			vars:     map[string]any{"a": "1", "b": "2", "c": "3"},
			expected: "1 2 3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Expand(tt.input, tt.vars)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// TestExpand_MixedStyles tests both ${var} and $var in same string.
func TestExpand_MixedStyles(t *testing.T) {
	vars := map[string]any{
		"topic":    "billing",
		"attempts": 2,
	}

	result := Expand("Ask about ${topic}, attempt $attempts", vars)
	assert.Equal(t, "Ask about billing, attempt 2", result)
}

// TestExpand_MissingVariables tests behavior with missing variables.
func TestExpand_MissingVariables(t *testing.T) {
	t.Run("MissingKeep keeps placeholder", func(t *testing.T) {
		exp := NewExpander(WithMissingAction(MissingKeep))
		result, err := exp.Expand("Greet ${missing}", nil)
		require.NoError(t, err)
		assert.Equal(t, "Greet ${missing}", result)
	})

	t.Run("MissingKeep keeps dollar placeholder", func(t *testing.T) {
		exp := NewExpander(WithMissingAction(MissingKeep))
		result, err := exp.Expand("Greet $missing", nil)
		require.NoError(t, err)
		assert.Equal(t, "Greet $missing", result)
	})

	t.Run("MissingEmpty replaces with empty string", func(t *testing.T) {
		exp := NewExpander(WithMissingAction(MissingEmpty))
		result, err := exp.Expand("Greet ${missing}!", nil)
		require.NoError(t, err)
		assert.Equal(t, "Greet !", result)
	})

	t.Run("MissingEmpty replaces dollar with empty string", func(t *testing.T) {
		exp := NewExpander(WithMissingAction(MissingEmpty))
		result, err := exp.Expand("Greet $missing!", nil)
		require.NoError(t, err)
		assert.Equal(t, "Greet !", result)
	})

	t.Run("MissingError returns error for brace style", func(t *testing.T) {
		exp := NewExpander(WithMissingAction(MissingError))
		_, err := exp.Expand("Greet ${missing}", nil)
		require.Error(t, err)

		var undefinedErr *UndefinedVariableError
		require.ErrorAs(t, err, &undefinedErr)
		assert.Equal(t, []string{"missing"}, undefinedErr.Names)
		assert.Equal(t, "undefined variable: missing", err.Error())
	})

	t.Run("MissingError returns error for dollar style", func(t *testing.T) {
		exp := NewExpander(WithMissingAction(MissingError))
		_, err := exp.Expand("Greet $missing", nil)
		require.Error(t, err)

		var undefinedErr *UndefinedVariableError
		require.ErrorAs(t, err, &undefinedErr)
		assert.Equal(t, []string{"missing"}, undefinedErr.Names)
	})

	t.Run("MissingError with multiple missing", func(t *testing.T) {
		exp := NewExpander(WithMissingAction(MissingError))
		_, err := exp.Expand("${a} ${b} $c", nil)
		require.Error(t, err)

		var undefinedErr *UndefinedVariableError
		require.ErrorAs(t, err, &undefinedErr)
		assert.Len(t, undefinedErr.Names, 3)
		assert.Contains(t, err.Error(), "undefined variables:")
	})

	t.Run("partial variables found", func(t *testing.T) {
		exp := NewExpander(WithMissingAction(MissingError))
		_, err := exp.Expand("${found} ${missing}", map[string]any{"found": "yes"})
		require.Error(t, err)

		var undefinedErr *UndefinedVariableError
		require.ErrorAs(t, err, &undefinedErr)
		assert.Equal(t, []string{"missing"}, undefinedErr.Names)
	})
}

// TestExpand_EdgeCases tests edge cases.
func TestExpand_EdgeCases(t *testing.T) {
	t.Run("empty string", func(t *testing.T) {
		result := Expand("", map[string]any{"a": "b"})
		assert.Equal(t, "", result)
	})

	t.Run("nil vars", func(t *testing.T) {
		result := Expand("Greet ${customer_name}", nil)
		assert.Equal(t, "Greet ${customer_name}", result)
	})

	t.Run("empty vars", func(t *testing.T) {
		result := Expand("Greet ${customer_name}", map[string]any{})
		assert.Equal(t, "Greet ${customer_name}", result)
	})

	t.Run("no variables in string", func(t *testing.T) {
		result := Expand("Greet the caller", map[string]any{"name": "value"})
		assert.Equal(t, "Greet the caller", result)
	})

	t.Run("dollar sign without variable", func(t *testing.T) {
		result := Expand("$100 dollars", map[string]any{})
		// $100 should not be treated as a variable (starts with digit)
		assert.Equal(t, "$100 dollars", result)
	})

	t.Run("empty braces", func(t *testing.T) {
		// ${} is not a valid variable pattern
		result := Expand("${}", map[string]any{})
		assert.Equal(t, "${}", result)
	})

	t.Run("nested braces should not recursively expand", func(t *testing.T) {
		// ${${inner}} doesn't match the brace pattern, but $inner inside
		// does match the dollar pattern. The result is not re-expanded.
		result := Expand("${${inner}}", map[string]any{"inner": "name", "name": "value"})
		assert.Equal(t, "${name}", result)
	})

	t.Run("escaped-like patterns", func(t *testing.T) {
		// $$var is not a special escape
		result := Expand("$$var", map[string]any{"var": "value"})
		assert.Equal(t, "$value", result)
	})

	t.Run("variable with only underscore", func(t *testing.T) {
		result := Expand("${_}", map[string]any{"_": "underscore"})
		assert.Equal(t, "underscore", result)
	})

	t.Run("variable starting with underscore", func(t *testing.T) {
		result := Expand("${_private}", map[string]any{"_private": "secret"})
		assert.Equal(t, "secret", result)
	})
}

// TestExpand_DisabledStyles tests disabling pattern styles.
func TestExpand_DisabledStyles(t *testing.T) {
	vars := map[string]any{"topic": "billing"}

	t.Run("disable brace style", func(t *testing.T) {
		exp := NewExpander(WithBraceStyle(false))
		result, err := exp.Expand("${topic} $topic", vars)
		require.NoError(t, err)
		assert.Equal(t, "${topic} billing", result)
	})

	t.Run("disable dollar style", func(t *testing.T) {
		exp := NewExpander(WithDollarStyle(false))
		result, err := exp.Expand("${topic} $topic", vars)
		require.NoError(t, err)
		assert.Equal(t, "billing $topic", result)
	})

	t.Run("disable both styles", func(t *testing.T) {
		exp := NewExpander(WithBraceStyle(false), WithDollarStyle(false))
		result, err := exp.Expand("${topic} $topic", vars)
		require.NoError(t, err)
		assert.Equal(t, "${topic} $topic", result)
	})
}

// TestMustExpand tests the MustExpand method.
func TestMustExpand(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		exp := NewExpander()
		result := exp.MustExpand("Greet ${customer_name}", map[string]any{"customer_name": "Ana"})
		assert.Equal(t, "Greet Ana", result)
	})

	t.Run("panics on error", func(t *testing.T) {
		exp := NewExpander(WithMissingAction(MissingError))
		assert.Panics(t, func() {
			exp.MustExpand("${missing}", nil)
		})
	})
}

// TestExpandMap tests recursive map expansion.
func TestExpandMap(t *testing.T) {
	vars := map[string]any{"customer_email": "ana@example.com", "order_id": "A-1042"}

	t.Run("basic map expansion", func(t *testing.T) {
		input := map[string]any{
			"to":  "${customer_email}",
			"ref": "${order_id}",
		}
		result := ExpandMap(input, vars)
		assert.Equal(t, map[string]any{
			"to":  "ana@example.com",
			"ref": "A-1042",
		}, result)
	})

	t.Run("non-string values preserved", func(t *testing.T) {
		input := map[string]any{
			"to":       "${customer_email}",
			"priority": 2,
			"urgent":   true,
			"count":    int64(42),
		}
		result := ExpandMap(input, vars)
		assert.Equal(t, "ana@example.com", result["to"])
		assert.Equal(t, 2, result["priority"])
		assert.Equal(t, true, result["urgent"])
		assert.Equal(t, int64(42), result["count"])
	})

	t.Run("nested map expansion", func(t *testing.T) {
		input := map[string]any{
			"top": "${order_id}",
			"nested": map[string]any{
				"subject": "Order ${order_id} for ${customer_email}",
				"deep": map[string]any{
					"value": "$order_id",
				},
			},
		}
		result := ExpandMap(input, vars)
		assert.Equal(t, "A-1042", result["top"])

		nested, ok := result["nested"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Order A-1042 for ana@example.com", nested["subject"])

		deep, ok := nested["deep"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "A-1042", deep["value"])
	})

	t.Run("nil map", func(t *testing.T) {
		result := ExpandMap(nil, vars)
		assert.Nil(t, result)
	})

	t.Run("empty map", func(t *testing.T) {
		result := ExpandMap(map[string]any{}, vars)
		assert.Equal(t, map[string]any{}, result)
	})

	t.Run("expander with error", func(t *testing.T) {
		exp := NewExpander(WithMissingAction(MissingError))
		_, err := exp.ExpandMap(map[string]any{"key": "${missing}"}, nil)
		require.Error(t, err)
	})

	t.Run("error in nested map", func(t *testing.T) {
		exp := NewExpander(WithMissingAction(MissingError))
		_, err := exp.ExpandMap(map[string]any{
			"nested": map[string]any{
				"key": "${missing}",
			},
		}, nil)
		require.Error(t, err)
	})
}

// TestNewExpander tests expander creation with options.
func TestNewExpander(t *testing.T) {
	t.Run("default options", func(t *testing.T) {
		exp := NewExpander()
		assert.Equal(t, MissingKeep, exp.missingAction)
		assert.True(t, exp.braceStyle)
		assert.True(t, exp.dollarStyle)
	})

	t.Run("custom missing action", func(t *testing.T) {
		exp := NewExpander(WithMissingAction(MissingError))
		assert.Equal(t, MissingError, exp.missingAction)
	})

	t.Run("multiple options", func(t *testing.T) {
		exp := NewExpander(
			WithMissingAction(MissingEmpty),
			WithBraceStyle(false),
			WithDollarStyle(true),
		)
		assert.Equal(t, MissingEmpty, exp.missingAction)
		assert.False(t, exp.braceStyle)
		assert.True(t, exp.dollarStyle)
	})
}

// TestUndefinedVariableError tests error formatting.
func TestUndefinedVariableError(t *testing.T) {
	t.Run("single variable", func(t *testing.T) {
		err := &UndefinedVariableError{Names: []string{"foo"}}
		assert.Equal(t, "undefined variable: foo", err.Error())
	})

	t.Run("multiple variables", func(t *testing.T) {
		err := &UndefinedVariableError{Names: []string{"foo", "bar", "baz"}}
		assert.Equal(t, "undefined variables: foo, bar, baz", err.Error())
	})
}

// TestExpand_ConversationScenarios tests realistic use cases.
func TestExpand_ConversationScenarios(t *testing.T) {
	t.Run("node instructions", func(t *testing.T) {
		vars := map[string]any{
			"customer_name": "Ana",
			"order_id":      "A-1042",
			"status":        "shipped",
		}
		instructions := Expand(
			"Tell ${customer_name} that order ${order_id} is currently ${status}. "+
				"Ask whether they need anything else.", vars)
		assert.Equal(t,
			"Tell Ana that order A-1042 is currently shipped. "+
				"Ask whether they need anything else.", instructions)
	})

	t.Run("instructions before variables collected", func(t *testing.T) {
		// Early in the conversation the variable isn't set yet.
		// MissingKeep leaves the placeholder visible to the model.
		instructions := Expand("Confirm the spelling of ${customer_name}", nil)
		assert.Equal(t, "Confirm the spelling of ${customer_name}", instructions)
	})

	t.Run("action payload", func(t *testing.T) {
		vars := map[string]any{
			"customer_email": "ana@example.com",
			"ticket_id":      "T-77",
		}
		payload := ExpandMap(map[string]any{
			"type": "send_email",
			"params": map[string]any{
				"to":      "${customer_email}",
				"subject": "Update on ticket ${ticket_id}",
			},
		}, vars)

		params := payload["params"].(map[string]any)
		assert.Equal(t, "ana@example.com", params["to"])
		assert.Equal(t, "Update on ticket T-77", params["subject"])
	})

	t.Run("system prompt fragments", func(t *testing.T) {
		vars := map[string]any{
			"agent_role": "support agent",
			"company":    "Acme",
		}
		prompt := Expand("You are a $agent_role for $company.", vars)
		assert.Equal(t, "You are a support agent for Acme.", prompt)
	})
}
