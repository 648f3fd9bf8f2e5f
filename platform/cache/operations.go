package cache

import (
	"github.com/gomodule/redigo/redis"
	log "github.com/sirupsen/logrus"
)

func Get(key string, conn *redis.Conn) (string, error) {
	data, err := redis.String((*conn).Do("GET", key))
	if err != nil {
		return "", err
	}
	return data, nil
}

func Set(key string, value interface{}, conn *redis.Conn) bool {
	reply, err := redis.String((*conn).Do("SET", key, value))
	if reply != "OK" || err != nil {
		log.Warn("redis SET failed: ", err)
		return false
	}
	return true
}

func Del(key string, conn *redis.Conn) error {
	_, err := (*conn).Do("DEL", key)
	return err
}

func HSET(key string, field string, value interface{}, conn *redis.Conn) error {
	_, err := (*conn).Do("HSET", key, field, value)
	return err
}

func HGET(key string, field string, conn *redis.Conn) (string, error) {
	res, err := redis.String((*conn).Do("HGET", key, field))
	if err != nil {
		return "", err
	}
	return res, nil
}

func SADD(key string, member string, conn *redis.Conn) error {
	_, err := (*conn).Do("SADD", key, member)
	return err
}

func SREM(key string, member string, conn *redis.Conn) error {
	_, err := (*conn).Do("SREM", key, member)
	return err
}

func SCARD(key string, conn *redis.Conn) (int, error) {
	num, err := redis.Int((*conn).Do("SCARD", key))
	if err != nil {
		return -1, err
	}
	return num, nil
}

func SMEMBERS(key string, conn *redis.Conn) ([]string, error) {
	return redis.Strings((*conn).Do("SMEMBERS", key))
}
