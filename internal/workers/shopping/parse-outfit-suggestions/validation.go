package parseoutfitsuggestions

const inputSchema = `{
  "type": "object",
  "required": ["modelResponse"],
  "properties": {
    "modelResponse": {
      "type": "string",
      "minLength": 1,
      "description": "Raw text answer of the vision model"
    }
  }
}`

const outputSchema = `{
  "type": "object",
  "required": ["analysis"],
  "properties": {
    "analysis": {
      "type": "object",
      "required": ["suggestions"],
      "properties": {
        "outfit_description": {"type": "string"},
        "style": {"type": "string"},
        "color_palette": {"type": "string"},
        "suggestions": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["item"],
            "properties": {
              "item": {"type": "string"},
              "search_term": {"type": "string"},
              "category": {"type": "string"}
            }
          }
        }
      }
    }
  }
}`

func GetInputSchema() string {
	return inputSchema
}

func GetOutputSchema() string {
	return outputSchema
}
