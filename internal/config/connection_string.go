package config

import (
	"strings"
)

// BlobConnection holds the parts of an object-store connection string.
//
// Format: "Endpoint=https://s3.example.com;Region=eu-central-1;AccessKeyId=...;SecretAccessKey=...;UsePathStyle=true"
// Keys are case-insensitive, unknown keys are ignored.
type BlobConnection struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

func ParseBlobConnection(raw string) BlobConnection {
	conn := BlobConnection{Region: "us-east-1", UsePathStyle: true}
	for _, part := range strings.Split(raw, ";") {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "endpoint":
			conn.Endpoint = strings.TrimRight(value, "/")
		case "region":
			if value != "" {
				conn.Region = value
			}
		case "accesskeyid":
			conn.AccessKeyID = value
		case "secretaccesskey":
			conn.SecretAccessKey = value
		case "usepathstyle":
			conn.UsePathStyle = strings.EqualFold(value, "true")
		}
	}
	return conn
}
