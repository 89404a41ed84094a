package protocol

import (
	"crypto/md5" //nolint:gosec // mandated by the wire protocol, not used for anything security-sensitive here
	"encoding/hex"
	"fmt"

	"github.com/lowlevl/pqcore/internal/wire"
	"github.com/lowlevl/pqcore/pqerr"
)

// Credentials are the values needed to answer whichever authentication
// challenge the server issues during startup.
type Credentials struct {
	Username string
	Password string
	Database string
}

// StartupOutcome is what a successful startup handshake produces: the
// server's reported parameters and the cancel key for this session.
type StartupOutcome struct {
	Parameters map[string]string
	ProcessID  int32
	SecretKey  int32
}

// NewStartupDispatch builds the Dispatch driving the connection through
// Authenticating -> Ready (spec §4.2). It answers AuthenticationCleartextPassword
// and AuthenticationMD5Password challenges, collects ParameterStatus and
// BackendKeyData, and completes on the first ReadyForQuery.
func NewStartupDispatch(state *State, creds Credentials) (Dispatch, *StartupOutcome) {
	state.Phase = Authenticating
	outcome := &StartupOutcome{Parameters: map[string]string{}}

	return func(g *Generator, msg *wire.Message) (bool, error) {
		switch msg.Type {
		case wire.ServerAuth:
			return handleAuthMessage(g, msg.Auth, creds)
		case wire.ServerParameterStatus:
			outcome.Parameters[msg.ParamStatus.Name] = msg.ParamStatus.Value
			return false, nil
		case wire.ServerBackendKeyData:
			outcome.ProcessID = msg.BackendKey.ProcessID
			outcome.SecretKey = msg.BackendKey.SecretKey
			return false, nil
		case wire.ServerErrorResponse:
			return false, databaseErrorFromFields(msg.ErrorOrNotice)
		case wire.ServerNoticeResponse:
			return false, nil
		case wire.ServerReadyForQuery:
			state.OnReadyForQuery(msg.ReadyForQuery.Status)
			return true, nil
		default:
			return false, fmt.Errorf("protocol: unexpected message %s during startup", msg.Type)
		}
	}, outcome
}

func handleAuthMessage(g *Generator, auth wire.AuthMessage, creds Credentials) (bool, error) {
	switch auth.Type {
	case wire.AuthOK:
		return false, nil
	case wire.AuthCleartextPassword:
		g.enqueue(wire.FramePassword(creds.Password))
		return false, nil
	case wire.AuthMD5Password:
		if len(auth.Data) < 4 {
			return false, pqerr.NewOperationalError("protocol: malformed AuthenticationMD5Password salt")
		}
		g.enqueue(wire.FramePassword(md5Response(creds.Username, creds.Password, auth.Data[:4])))
		return false, nil
	default:
		return false, pqerr.NewOperationalError("protocol: unsupported authentication method %d", auth.Type)
	}
}

// md5Response implements Postgres' "md5" auth method:
// "md5" + md5(md5(password + username) + salt) hex-encoded.
func md5Response(username, password string, salt []byte) string {
	inner := md5.Sum([]byte(password + username)) //nolint:gosec
	outer := md5.Sum(append(append([]byte{}, inner[:]...), salt...)) //nolint:gosec
	return "md5" + hex.EncodeToString(outer[:])
}

func databaseErrorFromFields(f wire.ErrorFields) error {
	err := pqerr.NewDatabaseError(codeOf(f.Code), f.Message, f.Detail, f.Hint, pqerr.Severity(f.Severity))
	return err
}
