package git

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner records git invocations and answers captured commands from a
// table keyed by the joined arguments.
type fakeRunner struct {
	outputs map[string]string
	fail    map[string]error
	calls   []string
}

func (f *fakeRunner) Run(ctx context.Context, dir string, stdout, stderr io.Writer, args ...string) error {
	key := strings.Join(args, " ")
	f.calls = append(f.calls, key)
	if err, ok := f.fail[key]; ok {
		_, _ = io.WriteString(stderr, "fatal: "+key)
		return err
	}
	_, _ = io.WriteString(stdout, f.outputs[key])
	return nil
}

func newTestRepo(r *fakeRunner) *Repo {
	return &Repo{Dir: "/repo", Runner: r}
}

func TestCommands(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		do   func(r *Repo) error
		want string
	}{
		{"add", func(r *Repo) error { return r.AddAll(ctx) }, "add ."},
		{"commit", func(r *Repo) error { return r.Commit(ctx, "feat: x", false) }, "commit -m feat: x"},
		{"commit no-verify", func(r *Repo) error { return r.Commit(ctx, "msg", true) }, "commit -m msg --no-verify"},
		{"push", func(r *Repo) error { return r.Push(ctx, "branch", false) }, "push origin branch"},
		{"push no-verify", func(r *Repo) error { return r.Push(ctx, "branch", true) }, "push origin branch --no-verify"},
		{"push upstream", func(r *Repo) error { return r.PushUpstream(ctx, "mrkt/feature") }, "push -u origin mrkt/feature"},
		{"create branch", func(r *Repo) error { return r.CreateBranch(ctx, "mrkt/feature") }, "checkout -b mrkt/feature"},
		{"checkout", func(r *Repo) error { return r.Checkout(ctx, "main") }, "checkout main"},
		{"fetch", func(r *Repo) error { return r.Fetch(ctx, "main") }, "fetch origin main"},
		{"rebase", func(r *Repo) error { return r.Rebase(ctx, "origin/main") }, "rebase origin/main"},
		{"merge", func(r *Repo) error { return r.Merge(ctx, "origin/main") }, "merge origin/main"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fr := &fakeRunner{}
			require.NoError(t, tt.do(newTestRepo(fr)))
			assert.Equal(t, []string{tt.want}, fr.calls)
		})
	}
}

func TestRunFailure(t *testing.T) {
	fr := &fakeRunner{fail: map[string]error{"checkout -b taken": errors.New("exit status 128")}}
	err := newTestRepo(fr).CreateBranch(context.Background(), "taken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `create branch "taken"`)
}

func TestStagedDiff(t *testing.T) {
	fr := &fakeRunner{outputs: map[string]string{"diff --cached": "diff --git a/foo b/foo\n"}}
	diff, err := newTestRepo(fr).StagedDiff(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "diff --git a/foo b/foo\n", diff)

	fr = &fakeRunner{fail: map[string]error{"diff --cached": errors.New("exit status 129")}}
	_, err = newTestRepo(fr).StagedDiff(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fatal: diff --cached")
}

func TestStagedStatus(t *testing.T) {
	fr := &fakeRunner{outputs: map[string]string{
		"diff --cached --name-status": "M\tfile1.py\nA\tfile2.txt\nR087\told.go\tnew.go\n",
		"diff --cached --numstat":     "10\t2\tfile1.py\n-\t-\tfile2.txt\n3\t1\tnew.go\n",
	}}

	st, err := newTestRepo(fr).StagedStatus(context.Background())
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, []FileStatus{
		{Code: "M", Path: "file1.py"},
		{Code: "A", Path: "file2.txt"},
		{Code: "R", Path: "new.go"},
	}, st.Files)
	assert.Equal(t, 13, st.Additions)
	assert.Equal(t, 3, st.Deletions)
}

func TestStagedStatus_Nothing(t *testing.T) {
	fr := &fakeRunner{}
	st, err := newTestRepo(fr).StagedStatus(context.Background())
	require.NoError(t, err)
	assert.Nil(t, st)
	assert.Equal(t, []string{"diff --cached --name-status"}, fr.calls)
}

func TestFileStatusLabel(t *testing.T) {
	assert.Equal(t, "Modified", FileStatus{Code: "M"}.Label())
	assert.Equal(t, "Added", FileStatus{Code: "A"}.Label())
	assert.Equal(t, "Deleted", FileStatus{Code: "D"}.Label())
	assert.Equal(t, "Renamed", FileStatus{Code: "R"}.Label())
	assert.Equal(t, "T", FileStatus{Code: "T"}.Label())
}

func TestCurrentBranch(t *testing.T) {
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	head := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName("feature/login"))
	require.NoError(t, repo.Storer.SetReference(head))

	sub := filepath.Join(dir, "pkg")
	require.NoError(t, os.MkdirAll(sub, 0755))

	r := &Repo{Dir: sub}
	branch, err := r.CurrentBranch()
	require.NoError(t, err)
	assert.Equal(t, "feature/login", branch)

	root, err := Root(sub)
	require.NoError(t, err)
	assert.Equal(t, dir, root)
}

func TestOpen_KeepsWorkDir(t *testing.T) {
	dir := t.TempDir()
	_, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	sub := filepath.Join(dir, "cmd")
	require.NoError(t, os.MkdirAll(sub, 0755))

	r, err := Open(sub, nil)
	require.NoError(t, err)
	assert.Equal(t, sub, r.Dir)
	assert.Equal(t, dir, r.Root)
}

func TestCurrentBranch_Detached(t *testing.T) {
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	detached := plumbing.NewHashReference(plumbing.HEAD, plumbing.NewHash("0123456789abcdef0123456789abcdef01234567"))
	require.NoError(t, repo.Storer.SetReference(detached))

	_, err = (&Repo{Dir: dir}).CurrentBranch()
	assert.ErrorIs(t, err, ErrDetachedHead)
}

func TestRoot_NotARepo(t *testing.T) {
	_, err := Root(t.TempDir())
	assert.Error(t, err)
}

func TestRunWritesToStdout(t *testing.T) {
	var out bytes.Buffer
	fr := &fakeRunner{outputs: map[string]string{"push origin b": "pushed\n"}}
	r := &Repo{Dir: "/repo", Runner: fr, Stdout: &out}

	require.NoError(t, r.Push(context.Background(), "b", false))
	assert.Equal(t, "pushed\n", out.String())
}
