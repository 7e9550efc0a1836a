package api

import (
	"context"
	"net/url"

	"expo-admin/internal/listmanager"
)

func resourcePath(resource string, id ...string) string {
	p := "/" + url.PathEscape(resource)
	for _, part := range id {
		p += "/" + url.PathEscape(part)
	}
	return p
}

// List fetches every record of resource.
func (c *Client) List(ctx context.Context, resource string) ([]listmanager.Record, error) {
	resp, err := c.request(ctx).Get(resourcePath(resource))
	if err := c.check("list "+resource, resp, err); err != nil {
		return nil, err
	}
	return decodeList[listmanager.Record](resp.Body())
}

// Get fetches one record.
func (c *Client) Get(ctx context.Context, resource, id string) (listmanager.Record, error) {
	resp, err := c.request(ctx).Get(resourcePath(resource, id))
	if err := c.check("get "+resource, resp, err); err != nil {
		return nil, err
	}
	return decodeRecord(resp.Body())
}

// Create posts fields and returns the created record when the API echoes it.
func (c *Client) Create(ctx context.Context, resource string, fields listmanager.Record) (listmanager.Record, error) {
	resp, err := c.request(ctx).SetBody(fields).Post(resourcePath(resource))
	if err := c.check("create "+resource, resp, err); err != nil {
		return nil, err
	}
	return decodeRecord(resp.Body())
}

// Update replaces the fields of record id.
func (c *Client) Update(ctx context.Context, resource, id string, fields listmanager.Record) (listmanager.Record, error) {
	resp, err := c.request(ctx).SetBody(fields).Put(resourcePath(resource, id))
	if err := c.check("update "+resource, resp, err); err != nil {
		return nil, err
	}
	return decodeRecord(resp.Body())
}

func (c *Client) Delete(ctx context.Context, resource, id string) error {
	resp, err := c.request(ctx).Delete(resourcePath(resource, id))
	return c.check("delete "+resource, resp, err)
}

// Perform triggers a named action on one record, e.g. POST /users/7/resend-invite.
func (c *Client) Perform(ctx context.Context, resource, id, action string) error {
	resp, err := c.request(ctx).Post(resourcePath(resource, id, action))
	return c.check(action+" "+resource, resp, err)
}
