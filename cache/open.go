package cache

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/fexli/logger"
	"github.com/redis/go-redis/v9"
)

// Open 按地址创建缓存后端
//
//	./cache 或 /tmp/cache      文件
//	memory                     进程内
//	redis://localhost:6379/0   redis
//	memcache://h1:11211,h2     memcached
//	s3://bucket/prefix?region=us-east-1&endpoint=http://minio:9000
func Open(ctx context.Context, dsn string) (Backend, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" || dsn == "memory" || dsn == "memory://" {
		return NewMemory(), nil
	}
	if dsn[0] == '.' || dsn[0] == '/' {
		return NewFile(dsn)
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return nil, err
	}
	var b Backend
	switch u.Scheme {
	case "file":
		b, err = NewFile(u.Host + u.Path)
	case "redis", "rediss":
		var opt *redis.Options
		if opt, err = redis.ParseURL(dsn); err == nil {
			b = NewRedis(redis.NewClient(opt))
		}
	case "memcache", "memcached":
		b = NewMemcache(memcacheServers(u.Host)...)
	case "s3":
		o := S3Options{
			Region:   u.Query().Get("region"),
			Endpoint: u.Query().Get("endpoint"),
		}
		if u.User != nil {
			o.AccessKey = u.User.Username()
			o.SecretKey, _ = u.User.Password()
		}
		prefix := strings.TrimPrefix(u.Path, "/")
		if prefix != "" && !strings.HasSuffix(prefix, "/") {
			prefix += "/"
		}
		client, cerr := NewS3Client(ctx, o)
		if cerr != nil {
			return nil, cerr
		}
		b = NewS3(client, u.Host, prefix)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCache, dsn)
	}
	if err != nil {
		return nil, err
	}
	cacheLog.Notice(logger.WithContent("缓存后端：", u.Scheme))
	return b, nil
}

func memcacheServers(hosts string) []string {
	var servers []string
	for _, h := range strings.Split(hosts, ",") {
		if h == "" {
			continue
		}
		if _, _, err := net.SplitHostPort(h); err != nil {
			h = net.JoinHostPort(h, "11211")
		}
		servers = append(servers, h)
	}
	if len(servers) == 0 {
		servers = []string{"localhost:11211"}
	}
	return servers
}
