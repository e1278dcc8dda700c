package scheduler

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/pmnps/errors"
	"github.com/kbukum/pmnps/logger"
	"github.com/kbukum/pmnps/output"
	"github.com/kbukum/pmnps/process"
	"github.com/kbukum/pmnps/resilience"
	"github.com/kbukum/pmnps/workspace"
)

func init() { output.DisableColor() }

// --- fakes ---

type fakeOutcome struct {
	stdout, stderr string
	err            error
}

type fakeRunner struct {
	mu       sync.Mutex
	calls    []process.Command
	outcomes map[string][]fakeOutcome
}

func (f *fakeRunner) Run(_ context.Context, cmd process.Command) (*process.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	var out fakeOutcome
	key := cmd.Label + ":" + cmd.String()
	if queue := f.outcomes[key]; len(queue) > 0 {
		out = queue[0]
		if len(queue) > 1 {
			f.outcomes[key] = queue[1:]
		}
	}
	f.mu.Unlock()

	if cmd.Stdout != nil {
		_, _ = cmd.Stdout.Write([]byte(out.stdout))
	}
	if cmd.Stderr != nil {
		_, _ = cmd.Stderr.Write([]byte(out.stderr))
	}
	return &process.Result{Stdout: []byte(out.stdout), Stderr: []byte(out.stderr)}, out.err
}

func (f *fakeRunner) commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.Label + ":" + c.String()
	}
	return out
}

func newExecutor(r process.Runner) (*Executor, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return &Executor{
		Runner:         r,
		PackageManager: "npm",
		Printer:        output.New(&stdout, &stderr),
		Logger:         logger.Nop(),
	}, &stdout, &stderr
}

func platform(name string, opts ...func(*workspace.Manifest)) Platform {
	m := &workspace.Manifest{Name: name, Dir: "/ws/plats/" + name, Scripts: map[string]string{"build": "x"}}
	for _, o := range opts {
		o(m)
	}
	return NewPlatform(m)
}

func withHooks(before, after string) func(*workspace.Manifest) {
	return func(m *workspace.Manifest) {
		if m.Pmnps == nil {
			m.Pmnps = &workspace.Meta{}
		}
		m.Pmnps.BuildHook = &workspace.BuildHook{Before: before, After: after}
	}
}

func withDeps(deps ...string) func(*workspace.Manifest) {
	return func(m *workspace.Manifest) {
		if m.Pmnps == nil {
			m.Pmnps = &workspace.Meta{}
		}
		m.Pmnps.PlatDependencies = deps
	}
}

// --- tasks ---

func TestTaskArgs(t *testing.T) {
	scoped := &workspace.Manifest{Name: "@corp/ui", Kind: workspace.KindPackage}
	scopedPlatform := &workspace.Manifest{Name: "@corp/site", Kind: workspace.KindPlatform}
	plain := &workspace.Manifest{Name: "ui"}

	tests := []struct {
		name string
		got  []string
		want []string
	}{
		{"build", BuildTask("", "").Args(plain, ""), []string{"run", "build"}},
		{"build mode", BuildTask("prod", "").Args(plain, ""), []string{"run", "build-prod"}},
		{"build param", BuildTask("", "").Args(plain, "--watch  --env=prod"), []string{"run", "build", "--", "--watch", "--env=prod"}},
		{"publish", PublishTask("").Args(plain, ""), []string{"publish"}},
		{"publish scoped otp", PublishTask("123456").Args(scoped, ""), []string{"publish", "--access=public", "--otp", "123456"}},
		{"publish scoped platform", PublishTask("").Args(scopedPlatform, ""), []string{"publish"}},
		{"install", InstallTask(resilience.InstallRetryConfig(0)).Args(plain, ""), []string{"install"}},
		{"start", StartTask().Args(plain, ""), []string{"start"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if !reflect.DeepEqual(tc.got, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, tc.got)
			}
		})
	}
}

// --- executor ---

func TestExecute_HookOrderAndParams(t *testing.T) {
	r := &fakeRunner{}
	e, _, _ := newExecutor(r)
	web := platform("web", withHooks("echo pre", "echo post"))

	task := BuildTask("", "?web=--watch&web.before=seed")
	if _, err := e.Execute(context.Background(), web, true, task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"web:echo pre seed", "web:npm run build -- --watch", "web:echo post"}
	if got := r.commands(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	for _, c := range r.calls {
		if c.Dir != "/ws/plats/web" {
			t.Errorf("expected command in member dir, got %q", c.Dir)
		}
	}
}

func TestExecute_NoHooksWhenAbsentOrDisabled(t *testing.T) {
	r := &fakeRunner{}
	e, _, _ := newExecutor(r)

	if _, err := e.Execute(context.Background(), platform("api"), true, BuildTask("", "")); err != nil {
		t.Fatal(err)
	}
	hooked := platform("web", withHooks("echo pre", "echo post"))
	if _, err := e.Execute(context.Background(), hooked, true, PublishTask("")); err != nil {
		t.Fatal(err)
	}

	want := []string{"api:npm run build", "web:npm publish"}
	if got := r.commands(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestExecute_FailureStopsSequence(t *testing.T) {
	boom := errors.ProcessFailed("web", "npm run build", stderrors.New("exit code 2"))
	r := &fakeRunner{outcomes: map[string][]fakeOutcome{
		"web:npm run build": {{stderr: "compile error", err: boom}},
	}}
	e, _, _ := newExecutor(r)

	exec, err := e.Execute(context.Background(), platform("web", withHooks("echo pre", "echo post")), true, BuildTask("", ""))
	if !stderrors.Is(err, boom) {
		t.Fatalf("expected process failure, got %v", err)
	}
	if got := r.commands(); len(got) != 2 {
		t.Errorf("expected after hook to be skipped, got %v", got)
	}
	if exec.Stderr != "compile error" || exec.Err == nil {
		t.Errorf("unexpected execution %+v", exec)
	}
}

func TestExecute_ExclusiveStreams(t *testing.T) {
	r := &fakeRunner{outcomes: map[string][]fakeOutcome{
		"web:npm run build": {{stdout: "built\n"}},
	}}
	e, stdout, _ := newExecutor(r)

	if _, err := e.Execute(context.Background(), platform("web"), true, BuildTask("", "")); err != nil {
		t.Fatal(err)
	}
	if r.calls[0].Stdout == nil || r.calls[0].Stderr == nil {
		t.Error("expected exclusive command to stream")
	}
	if stdout.String() != "built\n" {
		t.Errorf("expected raw streamed output without header, got %q", stdout.String())
	}
}

func TestExecute_BufferedSection(t *testing.T) {
	r := &fakeRunner{outcomes: map[string][]fakeOutcome{
		"web:npm run build": {{stdout: "built\n", stderr: "npm WARN deprecated\n"}},
	}}
	e, stdout, stderr := newExecutor(r)

	exec, err := e.Execute(context.Background(), platform("web"), false, BuildTask("", ""))
	if err != nil {
		t.Fatalf("stderr output must not fail the member: %v", err)
	}
	if !exec.HasWarnings() {
		t.Error("expected warnings")
	}
	if r.calls[0].Stdout != nil {
		t.Error("expected buffered command")
	}
	if stdout.String() != "==================== web ====================\nbuilt\n" {
		t.Errorf("unexpected stdout %q", stdout.String())
	}
	if stderr.String() != "npm WARN deprecated\n" {
		t.Errorf("unexpected stderr %q", stderr.String())
	}
}

func TestExecute_PublishHeader(t *testing.T) {
	r := &fakeRunner{}
	e, stdout, _ := newExecutor(r)
	pkg := Packages([]*workspace.Manifest{{Name: "utils", Dir: "/ws/packages/utils"}})[0]

	if _, err := e.Execute(context.Background(), pkg, false, PublishTask("")); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(stdout.String(), "==================== publish utils ====================") {
		t.Errorf("unexpected header %q", stdout.String())
	}
}

func TestExecute_InstallRetries(t *testing.T) {
	failed := errors.ProcessFailed("web", "npm install", stderrors.New("exit code 1"))
	r := &fakeRunner{outcomes: map[string][]fakeOutcome{
		"web:npm install": {{err: failed}, {stdout: "ok"}},
	}}
	e, _, _ := newExecutor(r)

	retry := resilience.InstallRetryConfig(1)
	retry.InitialBackoff = time.Millisecond
	if _, err := e.Execute(context.Background(), platform("web"), true, InstallTask(retry)); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if len(r.calls) != 2 {
		t.Errorf("expected 2 attempts, got %d", len(r.calls))
	}
}

func TestRun_BatchFailureStopsLaterBatches(t *testing.T) {
	boom := errors.ProcessFailed("api", "npm run build", stderrors.New("exit code 1"))
	r := &fakeRunner{outcomes: map[string][]fakeOutcome{
		"api:npm run build": {{err: boom}},
	}}
	e, _, _ := newExecutor(r)

	batches := [][]Platform{{platform("api"), platform("auth")}, {platform("web", withDeps("api"))}}
	result, err := Run(context.Background(), e, batches, BuildTask("", ""))
	if !stderrors.Is(err, boom) {
		t.Fatalf("expected failure, got %v", err)
	}
	if nr, _ := result.Get("web"); nr.Status != "skipped" {
		t.Errorf("expected web skipped, got %s", nr.Status)
	}
	for _, c := range r.commands() {
		if strings.HasPrefix(c, "web:") {
			t.Errorf("web must not run, got %q", c)
		}
	}
}

// --- real processes ---

func writeFakePM(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fakepm")
	script := "#!/bin/sh\necho \"$(basename \"$PWD\") start $*\"\nsleep 0.02\necho \"$(basename \"$PWD\") end\"\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun_RealProcessesDoNotInterleave(t *testing.T) {
	root := t.TempDir()
	var members []Platform
	for _, name := range []string{"a", "b", "c"} {
		dir := filepath.Join(root, name)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		members = append(members, NewPlatform(&workspace.Manifest{Name: name, Dir: dir}))
	}

	var stdout, stderr bytes.Buffer
	e := &Executor{
		Runner:         process.NewAdapter(process.Config{}),
		PackageManager: writeFakePM(t),
		Printer:        output.New(&stdout, &stderr),
		Logger:         logger.Nop(),
	}
	if _, err := Run(context.Background(), e, [][]Platform{members}, BuildTask("", "")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if len(lines) != 9 {
		t.Fatalf("expected 9 lines, got %q", stdout.String())
	}
	for i := 0; i < len(lines); i += 3 {
		name := strings.Fields(lines[i])[1]
		if lines[i+1] != name+" start run build" || lines[i+2] != name+" end" {
			t.Errorf("section %s interleaved: %q", name, lines[i:i+3])
		}
	}
}

func TestRun_RealProcessFailure(t *testing.T) {
	dir := t.TempDir()
	e := &Executor{
		Runner:         process.NewAdapter(process.Config{}),
		PackageManager: "false",
		Logger:         logger.Nop(),
	}
	batch := [][]Platform{{NewPlatform(&workspace.Manifest{Name: "web", Dir: dir})}}

	_, err := Run(context.Background(), e, batch, BuildTask("", ""))
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeProcessFailed {
		t.Fatalf("expected PROCESS_FAILED, got %v", err)
	}
	if appErr.Details["member"] != "web" {
		t.Errorf("expected member web, got %v", appErr.Details["member"])
	}
}

func TestExecute_WarningsWhenStreamed(t *testing.T) {
	r := &fakeRunner{outcomes: map[string][]fakeOutcome{
		"web:npm run build": {{stdout: "built\n", stderr: "npm WARN peer dep\n"}},
		"api:npm run build": {{stdout: "built\n", stderr: "  \n"}},
	}}
	e, _, stderr := newExecutor(r)

	exec, err := e.Execute(context.Background(), platform("web"), true, BuildTask("", ""))
	if err != nil {
		t.Fatal(err)
	}
	if !exec.HasWarnings() {
		t.Error("expected streamed stderr to count as a warning")
	}
	if !strings.Contains(stderr.String(), "npm WARN peer dep") {
		t.Errorf("expected stderr to be streamed, got %q", stderr.String())
	}

	exec, err = e.Execute(context.Background(), platform("api"), true, BuildTask("", ""))
	if err != nil {
		t.Fatal(err)
	}
	if exec.HasWarnings() {
		t.Error("whitespace on stderr is not a warning")
	}
}
