package xgo

import (
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Marshal 与 encoding/json 兼容的编码
func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// MarshalIndent 两空格缩进，用于写出清单文件
func MarshalIndent(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// Unmarshal 与 encoding/json 兼容的解码
func Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// ToJSON 编码为字符串，失败时返回错误文本，仅用于日志
func ToJSON(v any) string {
	j, err := json.Marshal(v)
	if err != nil {
		return err.Error()
	}
	return string(j)
}
