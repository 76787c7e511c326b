package logger

import (
	"io"
	"log"
	"strings"
	"sync"
)

// Job transcript log: every prompt sent to the upstream agent and every raw
// response it returned, verbatim. Kept out of the main log because responses
// routinely run to several KB of prose.

var (
	jobMu  sync.Mutex
	jobLog *log.Logger
)

// SetJobWriter installs (or with nil, removes) the transcript destination.
func SetJobWriter(w io.Writer) {
	jobMu.Lock()
	defer jobMu.Unlock()
	if w == nil {
		jobLog = nil
		return
	}
	jobLog = log.New(w, "", log.LstdFlags)
}

func logJob(header string, sections map[string]string, order []string) {
	jobMu.Lock()
	l := jobLog
	jobMu.Unlock()
	if l == nil {
		return
	}
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	for _, title := range order {
		body := sections[title]
		if strings.TrimSpace(body) == "" {
			continue
		}
		b.WriteString("--- ")
		b.WriteString(title)
		b.WriteString(" ---\n")
		b.WriteString(body)
		if !strings.HasSuffix(body, "\n") {
			b.WriteString("\n")
		}
	}
	b.WriteString("=====\n")
	l.Print(b.String())
}

// LogJobSubmit records an outgoing prompt and the job ID it was assigned.
func LogJobSubmit(kind, jobID, prompt string) {
	logJob("[JOB][submit]["+kind+"] id="+jobID,
		map[string]string{"PROMPT": prompt}, []string{"PROMPT"})
}

// LogJobResult records the raw completed response (or failure text) of a job.
func LogJobResult(kind, jobID, raw string) {
	logJob("[JOB][result]["+kind+"] id="+jobID,
		map[string]string{"RAW": raw}, []string{"RAW"})
}
