package config

import "testing"

func TestValidate_RejectsMissingInputPath(t *testing.T) {
	c := &Config{APIKey: "k", OutputJSON: "out.json"}
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for missing InputPath")
	}
}

func TestValidate_RejectsMissingAPIKey(t *testing.T) {
	c := &Config{InputPath: "in.pdf", OutputJSON: "out.json"}
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for missing APIKey")
	}
}

func TestValidate_ClampsMinimums(t *testing.T) {
	c := &Config{
		InputPath:      "in.pdf",
		APIKey:         "k",
		OutputJSON:     "out.json",
		TimeoutSeconds: 5,
		MaxLines:       1,
		MaxChars:       10,
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if c.TimeoutSeconds != minTimeoutSeconds {
		t.Errorf("expected timeout clamped to %d, got %d", minTimeoutSeconds, c.TimeoutSeconds)
	}
	if c.MaxLines != minMaxLines {
		t.Errorf("expected max lines clamped to %d, got %d", minMaxLines, c.MaxLines)
	}
	if c.MaxChars != minMaxChars {
		t.Errorf("expected max chars clamped to %d, got %d", minMaxChars, c.MaxChars)
	}
}

func TestValidate_DefaultsLangAndModel(t *testing.T) {
	c := &Config{InputPath: "in.pdf", APIKey: "k", OutputJSON: "out.json"}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if c.Lang != "eng" {
		t.Errorf("expected default lang eng, got %q", c.Lang)
	}
	if c.Model != "gpt-4o-mini" {
		t.Errorf("expected default model gpt-4o-mini, got %q", c.Model)
	}
	if c.Threads != 1 {
		t.Errorf("expected default threads 1, got %d", c.Threads)
	}
}
