package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kairo/src/actions"
	"kairo/src/content"
	"kairo/src/llm"
	"kairo/src/singleinstance"
	"kairo/src/store"
	"kairo/src/tasks"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(&cliOptions{})
	var out, errOut bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), err
}

func pngData(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 2))))
	return buf.Bytes()
}

func TestInputContent(t *testing.T) {
	c, err := inputContent(pngData(t))
	require.NoError(t, err)
	assert.Equal(t, content.KindImage, c.Kind)
	assert.Equal(t, 4, c.Image.Width)

	c, err = inputContent([]byte("1. one\n2. two"))
	require.NoError(t, err)
	assert.Equal(t, content.KindText, c.Kind)
	assert.True(t, c.Text.LooksLikeList)

	_, err = inputContent([]byte(" \n\t"))
	assert.Error(t, err)
}

func TestResolveInstruction(t *testing.T) {
	catalog := actions.Default()
	catalog.SetLanguage("German")
	text := content.FromText(content.Text{Text: "hi"})

	instr, err := resolveInstruction(catalog, text, actions.Translate, "")
	require.NoError(t, err)
	assert.Contains(t, instr, "German")

	_, err = resolveInstruction(catalog, text, actions.Custom, " ")
	assert.Error(t, err)

	instr, err = resolveInstruction(catalog, text, actions.Custom, "Rhyme it")
	require.NoError(t, err)
	assert.Equal(t, "Rhyme it", instr)

	_, err = resolveInstruction(catalog, content.FromImage(content.Image{}), actions.FixGrammar, "")
	assert.ErrorIs(t, err, actions.ErrUnknownAction)
}

func TestTransformCallsCompletionAPI(t *testing.T) {
	var got llm.ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(llm.ChatResponse{Choices: []llm.Choice{{Message: llm.ResponseMessage{Content: "The cat."}}}})
	}))
	defer srv.Close()
	t.Setenv("API_BASE_URL", srv.URL)

	dir := t.TempDir()
	keyPath := filepath.Join(dir, "key")
	require.NoError(t, os.WriteFile(keyPath, []byte("sk-test\n"), 0o600))

	out, err := execute(t, "teh cat", "transform", "--action", "fix-grammar", "--api-key-path", keyPath, "--data-dir", dir)
	require.NoError(t, err)
	assert.Equal(t, "The cat.", out)

	require.Len(t, got.Messages, 2)
	assert.Contains(t, got.Messages[0].Content[0].Text, `"teh cat"`)
	assert.Contains(t, got.Messages[1].Content[0].Text, "Fix all grammar")

	out, err = execute(t, "teh cat", "transform", "--json", "--action", "fix-grammar", "--api-key-path", keyPath, "--data-dir", dir)
	require.NoError(t, err)
	var res transformResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "Grammar Fixed", res.Heading)
	assert.Equal(t, "stdin", res.Input)
	assert.Equal(t, len("The cat."), res.CharCount)
}

func TestTransformWithoutKey(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	dir := t.TempDir()
	_, err := execute(t, "x", "transform", "--api-key-path", filepath.Join(dir, "missing"), "--data-dir", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENROUTER_API_KEY not found")
}

func TestTasksCommands(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "", "tasks", "add", "--json", "--data-dir", dir, "Email", "Bob", "tomorrow", "#work")
	require.NoError(t, err)
	var task store.Task
	require.NoError(t, json.Unmarshal([]byte(out), &task))
	assert.Equal(t, "Email Bob tomorrow #work", task.Text)
	assert.Equal(t, "kairo-cli", task.Source.App)
	assert.NotNil(t, task.DueDate)
	assert.Contains(t, task.Tags, "work")

	out, err = execute(t, "", "tasks", "list", "--data-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, task.ID)
	assert.Contains(t, out, "pending")

	out, err = execute(t, "", "tasks", "done", task.ID, "--data-dir", dir)
	require.NoError(t, err)
	assert.Equal(t, "completed "+task.ID+"\n", out)

	out, err = execute(t, "", "tasks", "stats", "--json", "--data-dir", dir)
	require.NoError(t, err)
	var stats tasks.Stats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, tasks.Stats{Total: 1, Completed: 1}, stats)

	out, err = execute(t, "", "tasks", "list", "--status", "pending", "--json", "--data-dir", dir)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)

	_, err = execute(t, "", "tasks", "done", "nope", "--data-dir", dir)
	assert.ErrorIs(t, err, store.ErrNotFound)

	out, err = execute(t, "", "tasks", "edit", task.ID, "--reopen", "--priority", "high", "--tags", "a,b", "--json", "--data-dir", dir)
	require.NoError(t, err)
	var edited store.Task
	require.NoError(t, json.Unmarshal([]byte(out), &edited))
	assert.Equal(t, store.StatusPending, edited.Status)
	assert.Equal(t, store.PriorityHigh, edited.Priority)
	assert.Equal(t, []string{"a", "b"}, edited.Tags)
	assert.Nil(t, edited.CompletedAt)
	assert.Equal(t, task.Text, edited.Text)

	_, err = execute(t, "", "tasks", "edit", task.ID, "--priority", "someday", "--data-dir", dir)
	assert.Error(t, err)

	out, err = execute(t, "", "tasks", "cleanup", "--data-dir", dir)
	require.NoError(t, err)
	assert.Equal(t, "removed 0 tasks, 0 notes\n", out)
}

func TestNotesAndExport(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "", "notes", "add", "--data-dir", dir, "remember", "the", "#milk")
	require.NoError(t, err)

	out, err := execute(t, "", "notes", "list", "--json", "--data-dir", dir)
	require.NoError(t, err)
	var notes []store.Note
	require.NoError(t, json.Unmarshal([]byte(out), &notes))
	require.Len(t, notes, 1)
	assert.Equal(t, []string{"milk"}, notes[0].Tags)

	out, err = execute(t, "", "export", "--data-dir", dir)
	require.NoError(t, err)
	var x store.Export
	require.NoError(t, json.Unmarshal([]byte(out), &x))
	assert.Len(t, x.Notes, 1)
	assert.Empty(t, x.Tasks)

	out, err = execute(t, "", "info", "--json", "--data-dir", dir)
	require.NoError(t, err)
	var info store.Info
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, 1, info.NoteCount)
	assert.Zero(t, info.TaskCount)
}

func TestActionsCommand(t *testing.T) {
	out, err := execute(t, "", "actions", "--kind", "image", "--data-dir", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "extract-text")
	assert.NotContains(t, out, "fix-grammar")

	_, err = execute(t, "", "actions", "--kind", "video", "--data-dir", t.TempDir())
	assert.Error(t, err)
}

func TestLogsCommand(t *testing.T) {
	dir := t.TempDir()
	path := logFile(dir)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("a INF start\nb ERR boom\nc INF capture\nd ERR again\n"), 0o600))

	out, err := execute(t, "", "logs", "-n", "3", "--filter", "err", "--data-dir", dir)
	require.NoError(t, err)
	assert.Equal(t, "b ERR boom\nd ERR again\n", out)
}

func TestDelegateWithoutResident(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := strconv.Itoa(l.Addr().(*net.TCPAddr).Port)
	require.NoError(t, l.Close())
	t.Setenv(singleinstance.PortStartEnvVar, port)
	t.Setenv(singleinstance.PortEndEnvVar, port)

	_, err = execute(t, "", "delegate", "capture", "--data-dir", t.TempDir())
	assert.EqualError(t, err, "no running Kairo found")

	out, err := execute(t, "", "delegate", "screenshot", "--n", "3", "--json", "--data-dir", t.TempDir())
	require.NoError(t, err)
	var res delegateResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 3, res.Launched)
	assert.EqualValues(t, 3, res.Missing)
}

func TestParseDelegateArg(t *testing.T) {
	c, err := parseDelegateArg("Chat")
	require.NoError(t, err)
	assert.Equal(t, singleinstance.CommandShowChat, c)

	_, err = parseDelegateArg("ocr")
	assert.ErrorIs(t, err, singleinstance.ErrUnknownCommand)
}
