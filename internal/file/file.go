// Package file - журнал записей key-value в формате JSON Lines:
// одна запись на строку, более поздняя запись ключа перекрывает раннюю.
package file

import (
	"encoding/json"
	"os"
)

// Event - одна запись журнала.
type Event struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Producer дописывает записи в конец журнала.
type Producer struct {
	file    *os.File
	encoder *json.Encoder
}

// Consumer читает журнал с начала.
type Consumer struct {
	file    *os.File
	decoder *json.Decoder
}

func NewProducer(fileName string) (*Producer, error) {
	f, err := os.OpenFile(fileName, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return nil, err
	}

	return &Producer{
		file:    f,
		encoder: json.NewEncoder(f),
	}, nil
}

func (p *Producer) WriteEvent(event *Event) error {
	return p.encoder.Encode(event)
}

func (p *Producer) Close() error {
	return p.file.Close()
}

// NewConsumer открывает журнал на чтение. Отсутствующий файл создаётся.
func NewConsumer(fileName string) (*Consumer, error) {
	f, err := os.OpenFile(fileName, os.O_RDONLY|os.O_CREATE, 0o600)
	if err != nil {
		return nil, err
	}

	return &Consumer{
		file:    f,
		decoder: json.NewDecoder(f),
	}, nil
}

// ReadEvent возвращает следующую запись или io.EOF в конце журнала.
func (c *Consumer) ReadEvent() (*Event, error) {
	event := &Event{}
	if err := c.decoder.Decode(event); err != nil {
		return nil, err
	}
	return event, nil
}

func (c *Consumer) Close() error {
	return c.file.Close()
}
