package sources

import (
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"tripsync/internal/pipeline"
)

// ── SFTP Source ─────────────────────────────────────────────
// Lists and downloads export files from the partner's SFTP drop
// directory. One session per run: OpenSFTP dials, the engine closes.

// SFTPConfig holds the connection parameters for the partner endpoint.
type SFTPConfig struct {
	Host      string
	Port      int
	User      string
	KeyFile   string // path to the PEM private key
	RemoteDir string
}

type sftpSource struct {
	conn   *ssh.Client
	client *sftp.Client
	dir    string
}

// OpenSFTP dials the partner endpoint and returns a Source scoped to
// the configured remote directory.
func OpenSFTP(ctx context.Context, cfg SFTPConfig) (pipeline.Source, error) {
	key, err := os.ReadFile(cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	port := cfg.Port
	if port == 0 {
		port = 22
	}
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(port))

	sshCfg := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         30 * time.Second,
	}

	log.Printf("[SFTP] Connecting to %s as %s", addr, cfg.User)
	conn, err := ssh.Dial("tcp", addr, sshCfg)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	client, err := sftp.NewClient(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open sftp session: %w", err)
	}

	return &sftpSource{conn: conn, client: client, dir: cfg.RemoteDir}, nil
}

func (s *sftpSource) List(ctx context.Context) ([]pipeline.FileInfo, error) {
	entries, err := s.client.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.dir, err)
	}

	files := make([]pipeline.FileInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		files = append(files, pipeline.FileInfo{
			Name:      e.Name(),
			SizeBytes: e.Size(),
			ModTime:   e.ModTime(),
		})
	}
	return files, nil
}

func (s *sftpSource) Download(ctx context.Context, name string) ([]byte, error) {
	remote := path.Join(s.dir, name)
	f, err := s.client.Open(remote)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", remote, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", remote, err)
	}
	log.Printf("[SFTP] Downloaded %s (%d bytes)", remote, len(data))
	return data, nil
}

func (s *sftpSource) Close() error {
	s.client.Close()
	return s.conn.Close()
}
