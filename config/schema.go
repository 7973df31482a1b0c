package config

// configSchema validates the shape of a configuration file before it is
// unmarshaled. It deliberately checks structure and types, not business
// values; those are validated by each component's own Config.
const configSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["nats", "mysql"],
  "properties": {
    "version": {"type": "string"},
    "log_level": {"type": "string", "enum": ["debug", "info", "warn", "error"]},
    "nats": {
      "type": "object",
      "required": ["url"],
      "properties": {
        "url": {"type": "string", "minLength": 1},
        "bucket": {"type": "string"},
        "client_name": {"type": "string"}
      }
    },
    "mysql": {
      "type": "object",
      "required": ["dsn"],
      "properties": {
        "dsn": {"type": "string", "minLength": 1},
        "max_open_conns": {"type": "integer", "minimum": 0},
        "max_idle_conns": {"type": "integer", "minimum": 0}
      }
    },
    "kafka": {
      "type": "object",
      "properties": {
        "input": {
          "type": "object",
          "properties": {
            "brokers": {"type": "array", "items": {"type": "string"}},
            "topic": {"type": "string"},
            "group_id": {"type": "string"}
          }
        },
        "output": {
          "type": "object",
          "properties": {
            "brokers": {"type": "array", "items": {"type": "string"}},
            "topic": {"type": "string"}
          }
        }
      }
    },
    "engine": {"type": "object"},
    "metrics": {
      "type": "object",
      "properties": {
        "enabled": {"type": "boolean"},
        "port": {"type": "integer", "minimum": 0, "maximum": 65535},
        "path": {"type": "string"}
      }
    }
  }
}`
