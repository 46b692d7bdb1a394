package plugin

// ManifestSchema is the JSON Schema every plugin manifest must satisfy.
const ManifestSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["name", "version", "command"],
  "properties": {
    "name": {
      "type": "string",
      "pattern": "^[a-z0-9-]+$",
      "description": "Unique plugin name"
    },
    "version": {
      "type": "string",
      "pattern": "^\\d+\\.\\d+\\.\\d+$",
      "description": "Semver version"
    },
    "description": {
      "type": "string",
      "description": "Human-readable summary"
    },
    "author": {
      "type": "string",
      "description": "Plugin author"
    },
    "command": {
      "type": "string",
      "minLength": 1,
      "description": "Shell command run for each subscribed event"
    },
    "events": {
      "type": "array",
      "items": {
        "type": "string",
        "enum": [
          "pre:add",
          "pre:update",
          "pre:delete",
          "post:add",
          "post:update",
          "post:delete"
        ]
      },
      "description": "Mutation events the command subscribes to; empty means all"
    },
    "timeout_seconds": {
      "type": "integer",
      "minimum": 0,
      "description": "Per-invocation timeout; 0 means no limit"
    }
  }
}`
