/*
Package template provides variable expansion for strings.

# Overview

template expands ${var} and $var patterns in strings using provided
variable maps. Node instructions and action payloads reference values
collected during a conversation ("${customer_name}", "${order_id}"),
and this package renders them against the conversation context before
the instructions reach the model or the payload reaches a handler.

# Basic Usage

Expand variables using the package-level function:

	result := template.Expand("Greet ${customer_name}", map[string]any{"customer_name": "Ana"})
	// result: "Greet Ana"

Both brace and dollar-sign patterns are supported:

	vars := map[string]any{"topic": "billing", "attempts": 2}
	s := template.Expand("Ask about ${topic}, attempt $attempts", vars)
	// s: "Ask about billing, attempt 2"

# Variable Patterns

Two patterns are supported:

  - ${var} - Brace style, recommended for clarity
  - $var - Dollar style, simpler but requires word boundaries

The dollar style uses word boundary detection to avoid partial matches.
For example, $name won't match inside $nameSuffix.

# Missing Variables

By default, missing variables are kept as-is:

	result := template.Expand("Greet ${missing}", nil)
	// result: "Greet ${missing}"

This default suits conversation flows: a variable a later node fills in
stays visibly unexpanded rather than silently vanishing. Configure
behavior with options:

	exp := template.NewExpander(template.WithMissingAction(template.MissingEmpty))
	result, _ := exp.Expand("Greet ${missing}", nil)
	// result: "Greet "

	exp = template.NewExpander(template.WithMissingAction(template.MissingError))
	_, err := exp.Expand("Greet ${missing}", nil)
	// err: "undefined variable: missing"

# Payload Expansion

Expand all string values in an action payload recursively:

	vars := map[string]any{"customer_email": "ana@example.com", "order_id": "A-1042"}

	params := template.ExpandMap(map[string]any{
	    "to":      "${customer_email}",
	    "subject": "Order ${order_id}",
	    "meta": map[string]any{
	        "ref": "$order_id",
	    },
	}, vars)

# Custom Expander

Create a custom expander for advanced scenarios:

	exp := template.NewExpander(
	    template.WithMissingAction(template.MissingError),
	    template.WithBraceStyle(true),
	    template.WithDollarStyle(false), // Disable $var pattern
	)

	result, err := exp.Expand("${greeting}, ${customer_name}", map[string]any{
	    "greeting":      "Welcome back",
	    "customer_name": "Ana",
	})

# Thread Safety

Expander is safe for concurrent use after construction.
Package-level functions use a shared default expander.
*/
package template
