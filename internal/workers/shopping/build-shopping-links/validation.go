package buildshoppinglinks

const inputSchema = `{
  "type": "object",
  "required": ["suggestions"],
  "properties": {
    "suggestions": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "item": {"type": "string"},
          "search_term": {"type": "string"},
          "category": {"type": "string"}
        }
      }
    },
    "gender": {
      "type": "string",
      "enum": ["male", "female", "unknown", ""]
    }
  }
}`

func GetInputSchema() string {
	return inputSchema
}
