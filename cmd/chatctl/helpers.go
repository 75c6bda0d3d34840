package main

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

func newClient(baseURL, token string) *resty.Client {
	c := resty.New().SetBaseURL(baseURL).SetTimeout(30 * time.Second)
	if token != "" {
		c.SetAuthToken(token)
	}
	return c
}

func doGet(c *resty.Client, path string) ([]byte, error) {
	resp, err := c.R().Get(path)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode(), resp.String())
	}
	return resp.Body(), nil
}

func doPostJSON(c *resty.Client, path string, payload interface{}) ([]byte, error) {
	resp, err := c.R().SetHeader("Content-Type", "application/json").SetBody(payload).Post(path)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode(), resp.String())
	}
	return resp.Body(), nil
}

func doPutJSON(c *resty.Client, path string, payload interface{}) ([]byte, error) {
	resp, err := c.R().SetHeader("Content-Type", "application/json").SetBody(payload).Put(path)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode(), resp.String())
	}
	return resp.Body(), nil
}
