package deepgram

import "go.opentelemetry.io/contrib/bridges/otelslog"

const scopeName = "github.com/amielabs/amie-core/core/speechtotext/deepgram"

var logger = otelslog.NewLogger(scopeName)
