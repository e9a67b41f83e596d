package http

import (
	"net"
	"net/http"
	"time"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
)

const (
	dialTimeout         = 5 * time.Second
	dialKeepAlive       = 30 * time.Second
	maxIdleConns        = 100
	idleConnTimeout     = 90 * time.Second
	tlsHandshakeTimeout = 5 * time.Second
)

// NewStorageClient はS3などのオブジェクトストレージ呼び出し用のHTTPクライアントを作成します。
//
// aws-sdk-go-v2 の BuildableClient を返すため、AWS_CA_BUNDLE が設定されていても
// SDK がこのクライアントのTransportにRootCAsを追加できます。
//
// 設定:
//   - Proxy: 環境変数（HTTP_PROXYなど）が設定されている場合に使用
//   - Dialer.Timeout: TCP接続タイムアウト
//   - MaxIdleConns: 写真アップロードが続いても接続を使い回せるよう100
//   - TLSHandshakeTimeout: HTTPSハンドシェイクの最大時間
//   - Timeout: リクエスト全体のタイムアウト（呼び出し元から渡される）
func NewStorageClient(timeout time.Duration) *awshttp.BuildableClient {
	return awshttp.NewBuildableClient().
		WithTimeout(timeout).
		WithDialerOptions(configureDialer).
		WithTransportOptions(configureTransport)
}

func configureDialer(d *net.Dialer) {
	d.Timeout = dialTimeout
	d.KeepAlive = dialKeepAlive
}

func configureTransport(t *http.Transport) {
	t.Proxy = http.ProxyFromEnvironment
	t.MaxIdleConns = maxIdleConns
	t.IdleConnTimeout = idleConnTimeout
	t.TLSHandshakeTimeout = tlsHandshakeTimeout
}
