package validateshoppinglinks

const inputSchema = `{
  "type": "object",
  "required": ["candidateLinks"],
  "properties": {
    "candidateLinks": {
      "type": "object",
      "patternProperties": {
        "^[0-9]+$": {
          "type": "object",
          "additionalProperties": {"type": "string"}
        }
      },
      "additionalProperties": false
    }
  }
}`

const outputSchema = `{
  "type": "object",
  "required": ["validatedLinks", "linkValidation"],
  "properties": {
    "validatedLinks": {
      "type": "object",
      "patternProperties": {
        "^[0-9]+$": {
          "type": "object",
          "additionalProperties": {"type": "string"}
        }
      },
      "additionalProperties": false
    },
    "linkValidation": {
      "type": "object",
      "required": ["batchId", "total", "surviving", "byReason", "durationMs"],
      "properties": {
        "batchId": {"type": "string"},
        "total": {"type": "integer", "minimum": 0},
        "surviving": {"type": "integer", "minimum": 0},
        "byReason": {
          "type": "object",
          "additionalProperties": {"type": "integer"}
        },
        "durationMs": {"type": "integer", "minimum": 0}
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
